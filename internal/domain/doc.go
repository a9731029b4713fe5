// Package domain defines the core business entities of the memo
// classification pipeline and their validation rules.
package domain
