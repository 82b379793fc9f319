package repository

// Package repository contains data access layer abstractions.
// Implementations can live in subpackages (e.g., postgres) inside this directory.

// Scope restricts read queries to documents visible to a principal. It is
// the query-form twin of the access package's CanAccess rules: admins see
// everything; everyone else sees public documents, their own uploads, and
// department-level documents of their own department.
type Scope struct {
	Admin        bool
	UserID       string
	DepartmentID *string
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
