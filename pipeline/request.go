package pipeline

type Request struct {
	Tid  string `json:"tid"`
	Text string `json:"text"`
}

type Response struct {
	Tid        string `json:"tid"`
	Tagged     string `json:"tagged"`
	Sentences  int    `json:"sentences"`
	Degenerate int    `json:"degenerate"`
	Err        error  `json:"-"`
}

type Pipeline func(request Request) <-chan Response
