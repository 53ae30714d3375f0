// Package logging provides the logging interface shared by the series engine
// and the command-line tool. Components depend on Logger rather than on a
// concrete backend; zerolog is the default, a standard library adapter exists
// for plain text sinks, and mocks/ holds a gomock double for tests.
package logging
