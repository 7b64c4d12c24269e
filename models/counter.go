package models

// Counter is a serving station as stored by the backend. stepOrder drives
// display ordering.
type Counter struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	CounterNumber int    `json:"counterNumber"`
	IsVisible     bool   `json:"isVisible"`
	IsActive      bool   `json:"isActive"`
	StepOrder     int    `json:"stepOrder"`
}

// CounterBoard is the derived per-counter projection shown on the public
// display. It is rebuilt from scratch on every fetch and never stored.
type CounterBoard struct {
	Counter         Counter      `json:"counter"`
	CurrentNumber   string       `json:"currentNumber"`
	CurrentPatient  *QueueEntry  `json:"currentPatient,omitempty"`
	NextPatient     *QueueEntry  `json:"nextPatient,omitempty"`
	WaitingCount    int          `json:"waitingCount"`
	WaitingPatients []QueueEntry `json:"waitingPatients"`
}
