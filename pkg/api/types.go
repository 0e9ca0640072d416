package api

// Role identifies the author of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one entry of a conversation history.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of POST /chat. Messages holds the prior history
// followed by the current user message.
type ChatRequest struct {
	Messages []Message `json:"messages"`
}

// LastUserMessage returns the content of the final message if it was
// written by the user.
func (r *ChatRequest) LastUserMessage() (string, bool) {
	if len(r.Messages) == 0 {
		return "", false
	}
	last := r.Messages[len(r.Messages)-1]
	if last.Role != RoleUser {
		return "", false
	}
	return last.Content, true
}

// ChatResponse is the body returned by POST /chat.
type ChatResponse struct {
	Response       string          `json:"response"`
	FunctionOutput *FunctionOutput `json:"functionOutput,omitempty"`
}

// ExecuteRequest is the body of POST /execute.
type ExecuteRequest struct {
	Code string `json:"code"`
}

// ExecuteResponse is the success body of POST /execute.
type ExecuteResponse struct {
	Output string `json:"output"`
}

// OutputType discriminates the variants of FunctionOutput.
type OutputType string

const (
	OutputText    OutputType = "text"
	OutputChart   OutputType = "chart"
	OutputDiagram OutputType = "diagram"
	OutputQuiz    OutputType = "quiz"
)

// FunctionOutput is the result of one tool invocation. Exactly one of the
// payload fields matching Type is populated.
type FunctionOutput struct {
	Type    OutputType `json:"type"`
	Name    string     `json:"name,omitempty"`
	Text    string     `json:"text,omitempty"`
	Chart   *ChartSpec `json:"chart,omitempty"`
	Diagram string     `json:"diagram,omitempty"`
	Quiz    *QuizSpec  `json:"quiz,omitempty"`
	IsError bool       `json:"isError,omitempty"`
}

// ChartType enumerates the supported chart kinds.
type ChartType string

const (
	ChartBar       ChartType = "bar"
	ChartLine      ChartType = "line"
	ChartPie       ChartType = "pie"
	ChartDoughnut  ChartType = "doughnut"
	ChartRadar     ChartType = "radar"
	ChartPolarArea ChartType = "polarArea"
)

// ChartSpec is the data a chart renderer consumes.
type ChartSpec struct {
	Type   ChartType `json:"type"`
	Title  string    `json:"title,omitempty"`
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

// QuizType enumerates the supported quiz kinds.
type QuizType string

const (
	QuizMultipleChoice QuizType = "multiple_choice"
	QuizTrueFalse      QuizType = "true_false"
)

// QuizSpec is the data a quiz renderer consumes.
type QuizSpec struct {
	Type          QuizType `json:"type"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
}
