// Package testutil contains helper builders and fakes used across tests to
// reduce boilerplate when constructing conversation histories and scripting
// an execution transport. They are not intended for production usage.
package testutil
