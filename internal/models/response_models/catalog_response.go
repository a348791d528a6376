package response_models

type Prop struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Image     string   `json:"image"`
	Positions []string `json:"positions"`
}

type PropCategory struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IconName string `json:"iconName"`
	Props    []Prop `json:"props"`
}

type Template struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

type TemplateCategory struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Templates []Template `json:"templates"`
}

type PlanResponse struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Price            float64  `json:"price"`
	Interval         string   `json:"interval"`
	GenerationsLimit int      `json:"generationsLimit"`
	Features         []string `json:"features"`
	Highlighted      bool     `json:"highlighted,omitempty"`
}

type PromptTemplate struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Emoji  string `json:"emoji"`
	Prompt string `json:"prompt"`
}

type PromptTemplatesResponse struct {
	Templates     []PromptTemplate `json:"templates"`
	DefaultPrompt string           `json:"defaultPrompt"`
}
