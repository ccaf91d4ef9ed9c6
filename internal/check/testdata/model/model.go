package model

type Customer struct {
	ID       int
	FullName string
	Email    string
	Score    int

	loyalty int
}

func (c *Customer) Loyalty() int { return c.loyalty }

type CustomerTO struct {
	ID       int
	FullName string
	EMail    string
	Score    int
	Loyalty  int
	Secret   string
}

// OrderTO has no domain counterpart.
type OrderTO struct {
	Number string
}
