package qna

// CanAccept reports whether callerID may accept an answer on the question.
// Acceptance is a privilege of question ownership, not answer ownership,
// so the rule needs nothing beyond the question record itself.
func CanAccept(question Question, callerID int64) bool {
	return question.AskedBy == callerID
}
