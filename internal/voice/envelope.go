// Package voice adapts voice-platform requests to the task interpretation
// engine: it validates slots, keeps per-conversation state and turns engine
// results into speech.
package voice

// Request types sent by the voice platform.
const (
	LaunchRequest       = "LaunchRequest"
	IntentRequest       = "IntentRequest"
	SessionEndedRequest = "SessionEndedRequest"
)

// Intent names the handler understands.
const (
	AddTaskIntent      = "AddTaskIntent"
	UpdateTaskIntent   = "UpdateTaskIntent"
	CompleteTaskIntent = "CompleteTaskIntent"
	DeleteTaskIntent   = "DeleteTaskIntent"
	QueryTasksIntent   = "QueryTasksIntent"
	ProvideTaskIntent  = "ProvideTaskIntent"
	HelpIntent         = "AMAZON.HelpIntent"
	StopIntent         = "AMAZON.StopIntent"
	CancelIntent       = "AMAZON.CancelIntent"
	FallbackIntent     = "AMAZON.FallbackIntent"
)

// Request is the inbound envelope.
type Request struct {
	Version string      `json:"version"`
	Session Session     `json:"session"`
	Request RequestBody `json:"request"`
}

// Session identifies the conversation and the linked user.
type Session struct {
	SessionID string `json:"sessionId"`
	New       bool   `json:"new"`
	User      User   `json:"user"`
}

// User is the platform user; AccessToken is set once the account is linked.
type User struct {
	UserID      string `json:"userId"`
	AccessToken string `json:"accessToken,omitempty"`
}

// RequestBody carries the request type and, for IntentRequest, the intent.
type RequestBody struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
	Timestamp string `json:"timestamp,omitempty"`
	Locale    string `json:"locale,omitempty"`
	Intent    Intent `json:"intent"`
	Reason    string `json:"reason,omitempty"`
}

// Intent is a recognized intent with its raw slot values.
type Intent struct {
	Name  string             `json:"name"`
	Slots map[string]RawSlot `json:"slots,omitempty"`
}

// RawSlot is a slot exactly as the platform sent it.
type RawSlot struct {
	Name  string `json:"name"`
	Value string `json:"value,omitempty"`
}

// Response is the outbound envelope.
type Response struct {
	Version  string       `json:"version"`
	Response ResponseBody `json:"response"`
}

// ResponseBody is what the device says and shows.
type ResponseBody struct {
	OutputSpeech     *OutputSpeech `json:"outputSpeech,omitempty"`
	Card             *Card         `json:"card,omitempty"`
	Reprompt         *Reprompt     `json:"reprompt,omitempty"`
	ShouldEndSession bool          `json:"shouldEndSession"`
}

type OutputSpeech struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Card struct {
	Type    string `json:"type"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

type Reprompt struct {
	OutputSpeech OutputSpeech `json:"outputSpeech"`
}

const responseVersion = "1.0"

func plain(text string) *OutputSpeech {
	return &OutputSpeech{Type: "PlainText", Text: text}
}

// Tell speaks text and ends the session.
func Tell(text string) *Response {
	return &Response{
		Version:  responseVersion,
		Response: ResponseBody{OutputSpeech: plain(text), ShouldEndSession: true},
	}
}

// Ask speaks text and keeps the session open for an answer.
func Ask(text, reprompt string) *Response {
	if reprompt == "" {
		reprompt = text
	}
	return &Response{
		Version: responseVersion,
		Response: ResponseBody{
			OutputSpeech: plain(text),
			Reprompt:     &Reprompt{OutputSpeech: *plain(reprompt)},
		},
	}
}

// Empty is the reply to SessionEndedRequest.
func Empty() *Response {
	return &Response{Version: responseVersion, Response: ResponseBody{ShouldEndSession: true}}
}

// LinkAccount asks the user to link their account in the companion app.
func LinkAccount() *Response {
	r := Tell("Please link your account in the companion app so I can reach your tasks.")
	r.Response.Card = &Card{Type: "LinkAccount"}
	return r
}

// WithCard attaches a simple card.
func (r *Response) WithCard(title, content string) *Response {
	r.Response.Card = &Card{Type: "Simple", Title: title, Content: content}
	return r
}

// Speech returns the spoken text, or "" when there is none.
func (r *Response) Speech() string {
	if r == nil || r.Response.OutputSpeech == nil {
		return ""
	}
	return r.Response.OutputSpeech.Text
}
