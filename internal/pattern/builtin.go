package pattern

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/luaraujo/continuity/internal/model"
)

// builtinVersion tags the compiled-in rule tables.
const builtinVersion = "builtin-1"

// builtinRules are the default continuity rules per language. Literal
// phrases come first (highest trust), generic regex fallbacks last; all
// text is authored in folded form because matching folds the input.
var builtinRules = map[model.Language][]Rule{
	model.LangPT: {
		{Name: "pt-onde-paramos", Phrase: "onde paramos", Weight: 0.98},
		{Name: "pt-onde-estavamos", Phrase: "onde estavamos", Weight: 0.95},
		{Name: "pt-em-que-ponto", Phrase: "em que ponto paramos", Weight: 0.95},
		{Name: "pt-o-que-estavamos-fazendo", Phrase: "o que estavamos fazendo", Weight: 0.92},
		{Name: "pt-continuar-de-onde", Phrase: "continuar de onde paramos", Weight: 0.95},
		{Name: "pt-retomar-de-onde", Phrase: "retomar de onde paramos", Weight: 0.95},
		{Name: "pt-qual-era-o-contexto", Phrase: "qual era o contexto", Weight: 0.9},
		{Name: "pt-retomar-generico", Regex: `\b(continuar|retomar|voltar)\b.*\b(conversa|trabalho|projeto|sessao|contexto)\b`, Weight: 0.8},
	},
	model.LangEN: {
		{Name: "en-where-did-we-leave-off", Phrase: "where did we leave off", Weight: 0.98},
		{Name: "en-where-were-we", Phrase: "where were we", Weight: 0.95},
		{Name: "en-what-were-we-working-on", Phrase: "what were we working on", Weight: 0.95},
		{Name: "en-pick-up-where-we-left-off", Phrase: "pick up where we left off", Weight: 0.95},
		{Name: "en-continue-where-we-left-off", Phrase: "continue where we left off", Weight: 0.95},
		{Name: "en-what-was-the-context", Phrase: "what was the context", Weight: 0.9},
		{Name: "en-resume-generic", Regex: `\b(resume|continue|pick up)\b.*\b(session|work|conversation|context|project)\b`, Weight: 0.8},
	},
	model.LangES: {
		{Name: "es-donde-nos-quedamos", Phrase: "donde nos quedamos", Weight: 0.98},
		{Name: "es-en-que-estabamos", Phrase: "en que estabamos", Weight: 0.95},
		{Name: "es-que-estabamos-haciendo", Phrase: "que estabamos haciendo", Weight: 0.92},
		{Name: "es-continuar-donde-lo-dejamos", Phrase: "continuar donde lo dejamos", Weight: 0.95},
		{Name: "es-retomar-donde-quedamos", Phrase: "retomar donde quedamos", Weight: 0.95},
		{Name: "es-retomar-generico", Regex: `\b(continuar|retomar|seguir)\b.*\b(conversacion|trabajo|proyecto|sesion|contexto)\b`, Weight: 0.8},
	},
	model.LangFR: {
		{Name: "fr-ou-en-etions-nous", Phrase: "ou en etions nous", Weight: 0.98},
		{Name: "fr-ou-en-est-on", Phrase: "ou en est on", Weight: 0.92},
		{Name: "fr-on-en-etait-ou", Phrase: "on en etait ou", Weight: 0.92},
		{Name: "fr-reprendre-la-ou", Phrase: "reprendre la ou nous nous sommes arretes", Weight: 0.95},
		{Name: "fr-qu-est-ce-qu-on-faisait", Phrase: "qu est ce qu on faisait", Weight: 0.9},
		{Name: "fr-reprendre-generique", Regex: `\b(reprendre|continuer)\b.*\b(conversation|travail|projet|session|contexte)\b`, Weight: 0.8},
	},
	model.LangDE: {
		{Name: "de-wo-waren-wir-stehen-geblieben", Phrase: "wo waren wir stehen geblieben", Weight: 0.98},
		{Name: "de-wo-waren-wir", Phrase: "wo waren wir", Weight: 0.92},
		{Name: "de-woran-haben-wir-gearbeitet", Phrase: "woran haben wir gearbeitet", Weight: 0.95},
		{Name: "de-weitermachen-wo", Phrase: "weitermachen wo wir aufgehort haben", Weight: 0.95},
		{Name: "de-fortsetzen-generisch", Regex: `\b(weitermachen|fortsetzen|fortfahren)\b.*\b(gesprach|arbeit|projekt|sitzung|kontext)\b`, Weight: 0.8},
	},
	model.LangIT: {
		{Name: "it-dove-eravamo-rimasti", Phrase: "dove eravamo rimasti", Weight: 0.98},
		{Name: "it-dove-ci-siamo-fermati", Phrase: "dove ci siamo fermati", Weight: 0.95},
		{Name: "it-a-che-punto-eravamo", Phrase: "a che punto eravamo", Weight: 0.92},
		{Name: "it-cosa-stavamo-facendo", Phrase: "cosa stavamo facendo", Weight: 0.92},
		{Name: "it-riprendere-generico", Regex: `\b(riprendere|riprendiamo|continuare)\b.*\b(conversazione|lavoro|progetto|sessione|contesto)\b`, Weight: 0.8},
	},
	model.LangJA: {
		{Name: "ja-dokomade-hanashimashita", Phrase: "どこまで話しましたか", Weight: 0.98},
		{Name: "ja-zenkai-no-tsuzuki", Phrase: "前回の続き", Weight: 0.95},
		{Name: "ja-tsuzuki-kara", Phrase: "続きから", Weight: 0.9},
		{Name: "ja-dokomade-yarimashita", Phrase: "どこまでやりましたか", Weight: 0.95},
	},
	model.LangZH: {
		{Name: "zh-shangci-shuodao-nali", Phrase: "上次说到哪里", Weight: 0.98},
		{Name: "zh-shangci-liaodao-na", Phrase: "上次聊到哪", Weight: 0.95},
		{Name: "zh-jixu-shangci", Phrase: "继续上次的话题", Weight: 0.95},
		{Name: "zh-zhiqian-zai-zuo-shenme", Phrase: "之前在做什么", Weight: 0.92},
	},
	model.LangRU: {
		{Name: "ru-gde-my-ostanovilis", Phrase: "где мы остановились", Weight: 0.98},
		{Name: "ru-na-chem-my-ostanovilis", Phrase: "на чем мы остановились", Weight: 0.95},
		{Name: "ru-prodolzhim-s-togo-mesta", Phrase: "продолжим с того места", Weight: 0.95},
		{Name: "ru-chto-my-delali", Phrase: "что мы делали в прошлый раз", Weight: 0.92},
	},
}

// Default returns the compiled built-in table. The tables are static, so a
// compile failure here is a programming error.
func Default() *Table {
	t, err := compile(builtinVersion, builtinRules)
	if err != nil {
		panic(fmt.Sprintf("builtin pattern table: %v", err))
	}
	return t
}

// tableFile is the YAML layout of an external pattern table.
type tableFile struct {
	Version   string                    `yaml:"version"`
	Languages map[model.Language][]Rule `yaml:"languages"`
}

// Load reads a pattern table from a YAML file. The file fully replaces the
// built-in tables for the languages it declares.
func Load(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pattern table: %w", err)
	}
	var f tableFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse pattern table: %w", err)
	}
	if f.Version == "" {
		return nil, fmt.Errorf("%w: pattern table missing version", model.ErrValidation)
	}
	decls := builtinRules
	if len(f.Languages) > 0 {
		decls = make(map[model.Language][]Rule, len(builtinRules))
		for l, rules := range builtinRules {
			decls[l] = rules
		}
		for l, rules := range f.Languages {
			decls[l] = rules
		}
	}
	return compile(f.Version, decls)
}
