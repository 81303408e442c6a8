package model

// Theme is a 10-step color palette referenced by collections. Hex
// values without the leading '#'.
type Theme struct {
	Code string `json:"theme_code"`
	Name string `json:"theme_name"`
	C010 string `json:"theme_010"`
	C020 string `json:"theme_020"`
	C040 string `json:"theme_040"`
	C060 string `json:"theme_060"`
	C080 string `json:"theme_080"`
	C100 string `json:"theme_100"`
	C200 string `json:"theme_200"`
	C400 string `json:"theme_400"`
	C600 string `json:"theme_600"`
	C800 string `json:"theme_800"`
}
