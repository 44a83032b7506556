package i18n

import "strings"

// Translator retrieves localized messages for issue codes.
// data provides the values interpolated into the message template (for
// example "label", "limit" or "valids").
type Translator interface {
	Message(code string, data map[string]string) string
}

var english = map[string]string{
	"any.required": `"{{label}}" is required`,
	"any.only":     `"{{label}}" must be one of {{valids}}`,
	"any.invalid":  `"{{label}}" contains an invalid value`,
	"any.external": `"{{label}}" failed external validation: {{reason}}`,
	"any.link":     `"{{label}}" references a schema that could not be resolved: {{reason}}`,

	"string.base":         `"{{label}}" must be a string`,
	"string.empty":        `"{{label}}" is not allowed to be empty`,
	"string.min":          `"{{label}}" length must be at least {{limit}} characters long`,
	"string.max":          `"{{label}}" length must be less than or equal to {{limit}} characters long`,
	"string.length":       `"{{label}}" length must be {{limit}} characters long`,
	"string.alphanum":     `"{{label}}" must only contain alpha-numeric characters`,
	"string.token":        `"{{label}}" must only contain alpha-numeric and underscore characters`,
	"string.email":        `"{{label}}" must be a valid email`,
	"string.hostname":     `"{{label}}" must be a valid hostname`,
	"string.isoDate":      `"{{label}}" must be in iso format`,
	"string.isoDuration":  `"{{label}}" must be a valid ISO 8601 duration`,
	"string.creditCard":   `"{{label}}" must be a credit card`,
	"string.uri":          `"{{label}}" must be a valid uri`,
	"string.pattern.base": `"{{label}}" with value "{{value}}" fails to match the required pattern: {{regex}}`,

	"number.base":      `"{{label}}" must be a number`,
	"number.infinity":  `"{{label}}" cannot be infinity`,
	"number.unsafe":    `"{{label}}" must be a safe number`,
	"number.integer":   `"{{label}}" must be an integer`,
	"number.precision": `"{{label}}" must have no more than {{limit}} decimal places`,
	"number.port":      `"{{label}}" must be a valid port`,
	"number.min":       `"{{label}}" must be greater than or equal to {{limit}}`,
	"number.max":       `"{{label}}" must be less than or equal to {{limit}}`,
	"number.greater":   `"{{label}}" must be greater than {{limit}}`,
	"number.less":      `"{{label}}" must be less than {{limit}}`,
	"number.positive":  `"{{label}}" must be a positive number`,
	"number.negative":  `"{{label}}" must be a negative number`,
	"number.multiple":  `"{{label}}" must be a multiple of {{multiple}}`,

	"boolean.base": `"{{label}}" must be a boolean`,

	"date.base":   `"{{label}}" must be a valid date`,
	"date.format": `"{{label}}" must be in {{format}} format`,
	"date.min":    `"{{label}}" must be greater than or equal to "{{limit}}"`,
	"date.max":    `"{{label}}" must be less than or equal to "{{limit}}"`,

	"array.base": `"{{label}}" must be an array`,
	"array.min":  `"{{label}}" must contain at least {{limit}} items`,
	"array.max":  `"{{label}}" must contain less than or equal to {{limit}} items`,

	"object.base":    `"{{label}}" must be of type object`,
	"object.unknown": `"{{label}}" is not allowed`,
}

// Japanese covers the common codes; anything missing falls back to English.
var japanese = map[string]string{
	"any.required": `"{{label}}" は必須です`,
	"any.only":     `"{{label}}" は {{valids}} のいずれかである必要があります`,
	"any.invalid":  `"{{label}}" に不正な値が含まれています`,

	"string.base":  `"{{label}}" は文字列である必要があります`,
	"string.empty": `"{{label}}" は空にできません`,
	"string.min":   `"{{label}}" は {{limit}} 文字以上である必要があります`,
	"string.max":   `"{{label}}" は {{limit}} 文字以下である必要があります`,
	"string.email": `"{{label}}" は有効なメールアドレスである必要があります`,

	"number.base":    `"{{label}}" は数値である必要があります`,
	"number.integer": `"{{label}}" は整数である必要があります`,
	"number.min":     `"{{label}}" は {{limit}} 以上である必要があります`,
	"number.max":     `"{{label}}" は {{limit}} 以下である必要があります`,

	"boolean.base": `"{{label}}" は真偽値である必要があります`,
	"date.base":    `"{{label}}" は有効な日付である必要があります`,
	"array.base":   `"{{label}}" は配列である必要があります`,

	"object.base":    `"{{label}}" はオブジェクトである必要があります`,
	"object.unknown": `"{{label}}" は許可されていません`,
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := "", false
	if t.lang == "ja" {
		tmpl, ok = japanese[code]
	}
	if !ok {
		tmpl, ok = english[code]
	}
	if !ok {
		return code
	}
	return Render(tmpl, data)
}

// Render replaces {{name}} placeholders with values from data. Placeholders
// without a value render as empty strings.
func Render(tmpl string, data map[string]string) string {
	if !strings.Contains(tmpl, "{{") {
		return tmpl
	}
	b := &strings.Builder{}
	for {
		i := strings.Index(tmpl, "{{")
		if i < 0 {
			b.WriteString(tmpl)
			break
		}
		j := strings.Index(tmpl[i:], "}}")
		if j < 0 {
			b.WriteString(tmpl)
			break
		}
		b.WriteString(tmpl[:i])
		b.WriteString(data[strings.TrimSpace(tmpl[i+2:i+j])])
		tmpl = tmpl[i+j+2:]
	}
	return b.String()
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
