// Package language holds the static table of supported enrollment
// languages and their spoken prompt texts. The table is fixed at build
// time and not editable at runtime.
package language

// Language describes one supported enrollment/login language.
type Language struct {
	Code          string   `json:"code"`
	Name          string   `json:"name"`
	EnrollPrompts []string `json:"enroll_prompts"`
	LoginPrompt   string   `json:"login_prompt"`
}

// Supported lists the languages in display order.
var Supported = []Language{
	{
		Code: "en",
		Name: "English",
		EnrollPrompts: []string{
			"The weather is lovely today, perfect for a walk.",
			"Reading books opens up doors to new worlds.",
		},
		LoginPrompt: "Music often brings joy and lifts the spirit.",
	},
	{
		Code: "hi",
		Name: "Hindi (हिन्दी)",
		EnrollPrompts: []string{
			"आज मौसम बहुत सुहावना है, टहलने के लिए बढ़िया।",
			"किताबें पढ़ना नई दुनिया के दरवाजे खोलता है।",
		},
		LoginPrompt: "संगीत अक्सर खुशी लाता है और आत्मा को उत्साहित करता है।",
	},
	{
		Code: "ta",
		Name: "Tamil (தமிழ்)",
		EnrollPrompts: []string{
			"இன்று வானிலை மிகவும் அழகாக இருக்கிறது, நடைப்பயிற்சிக்கு ஏற்றது.",
			"புத்தகங்கள் வாசிப்பது புதிய உலகங்களுக்கான கதவுகளைத் திறக்கிறது.",
		},
		LoginPrompt: "இசை பெரும்பாலும் மகிழ்ச்சியைத் தருகிறது மற்றும் உற்சாகமூட்டுகிறது.",
	},
}

// Codes returns the supported language codes in display order.
func Codes() []string {
	codes := make([]string, len(Supported))
	for i, l := range Supported {
		codes[i] = l.Code
	}
	return codes
}

// IsSupported reports whether code is a supported language code.
func IsSupported(code string) bool {
	for _, l := range Supported {
		if l.Code == code {
			return true
		}
	}
	return false
}

// Lookup returns the language for code, if supported.
func Lookup(code string) (Language, bool) {
	for _, l := range Supported {
		if l.Code == code {
			return l, true
		}
	}
	return Language{}, false
}
