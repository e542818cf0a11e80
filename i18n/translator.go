package i18n

import "strings"

// Translator retrieves localized messages for validation codes.
// data provides optional parameters to embed in the message (for example,
// "min" or "allowed").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "required":
			msg = "必須項目です"
		case "too_short":
			msg = "{min}文字以上で入力してください"
		case "too_long":
			msg = "{max}文字以下で入力してください"
		case "too_small":
			msg = "{min}以上を指定してください"
		case "too_big":
			msg = "{max}以下を指定してください"
		case "too_few_items":
			msg = "{min}件以上指定してください"
		case "too_many_items":
			msg = "{max}件以下にしてください"
		case "pattern":
			msg = "形式が不正です"
		case "invalid_enum":
			msg = "次のいずれかを指定してください: {allowed}"
		case "invalid_email":
			msg = "メールアドレスの形式が不正です"
		case "invalid_format":
			msg = "形式が不正です"
		case "async_failed":
			msg = "検証を完了できませんでした"
		}
	default: // "en"
		switch code {
		case "required":
			msg = "this field is required"
		case "too_short":
			msg = "must be at least {min} characters"
		case "too_long":
			msg = "must be at most {max} characters"
		case "too_small":
			msg = "must be at least {min}"
		case "too_big":
			msg = "must be at most {max}"
		case "too_few_items":
			msg = "at least {min} items required"
		case "too_many_items":
			msg = "at most {max} items allowed"
		case "pattern":
			msg = "invalid format"
		case "invalid_enum":
			msg = "must be one of: {allowed}"
		case "invalid_email":
			msg = "invalid email address"
		case "invalid_format":
			msg = "invalid format"
		case "async_failed":
			msg = "validation could not be completed"
		}
	}
	if msg == "" {
		return code
	}
	return interpolate(msg, data)
}

// interpolate substitutes {key} placeholders from data. Unknown placeholders
// stay verbatim so missing parameters remain visible during development.
func interpolate(msg string, data map[string]string) string {
	if len(data) == 0 || !strings.ContainsRune(msg, '{') {
		return msg
	}
	out := msg
	for k, v := range data {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
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
