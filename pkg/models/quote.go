package models

// QuoteRequest is the public "pedir orçamento" form.
type QuoteRequest struct {
	Name         string `json:"nome"`
	Email        string `json:"email"`
	Phone        string `json:"telefone"`
	EventType    string `json:"tipoEvento"`
	EventDate    string `json:"dataEvento"`
	Location     string `json:"localizacao"`
	MusicalStyle string `json:"estiloMusical"`
	Budget       string `json:"orcamento"`
	Message      string `json:"mensagem"`
}

// MissingRequired reports whether any field other than style and budget is blank.
func (q *QuoteRequest) MissingRequired() bool {
	for _, v := range []string{q.Name, q.Email, q.Phone, q.EventType, q.EventDate, q.Location, q.Message} {
		if v == "" {
			return true
		}
	}
	return false
}
