package domain

// Message is an inbound message reduced to the fields the bot reacts to
type Message struct {
	ChatID       int64
	MessageID    int
	SenderID     int64
	SenderHandle string
	Text         string
	Contact      *Contact
}

// Contact is a phone number shared through the contact-request button
type Contact struct {
	PhoneNumber string
	// UserID is zero when the shared contact is not a Telegram user
	UserID int64
}

// HasText reports whether the message carries text content
func (m Message) HasText() bool {
	return m.Text != ""
}

// Choice is an inline button carrying an opaque callback token
type Choice struct {
	Label string
	Token string
}

// Keyboard describes the reply markup attached to an outgoing message
type Keyboard struct {
	Choices []Choice
	// RequestContact, when set, is the label of a one-shot contact request button
	RequestContact string
	Remove         bool
}

// Outgoing is a text message sent by the bot
type Outgoing struct {
	ChatID      int64
	Text        string
	HTML        bool
	LinkPreview bool
	Keyboard    Keyboard
}
