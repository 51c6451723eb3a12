package domain

// Scope is the visibility context of a listing query.
type Scope string

const (
	ScopePublic Scope = "public"
	ScopeMine   Scope = "mine"
	ScopeAdmin  Scope = "admin"
)
