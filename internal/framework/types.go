package framework

// Message is the unit that flows from Subscriber to Processor.
type Message struct {
	ID    string
	Queue string
	Data  []byte
	Extra map[string]interface{}
}
