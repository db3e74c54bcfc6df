package domain

import "encoding/json"

// CodeSuccess is the only envelope code that signals success.
const CodeSuccess = 200

// Envelope is the normalized response wrapper every API response conforms to.
type Envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

// OK reports whether the envelope carries a success code.
func (e *Envelope) OK() bool {
	return e.Code == CodeSuccess
}

// SuccessEnvelope wraps data in a success envelope and encodes it.
// A nil data value is encoded as JSON null.
func SuccessEnvelope(data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Code: CodeSuccess, Msg: "ok", Data: raw})
}

// ErrorEnvelope encodes a failure envelope with a null data field.
func ErrorEnvelope(code int, msg string) []byte {
	raw, _ := json.Marshal(Envelope{Code: code, Msg: msg, Data: json.RawMessage("null")})
	return raw
}
