// Package errors provides coded, structured errors for ima.
//
// Every error that crosses a package boundary in ima carries a code that
// maps to a registered template:
//   - a short message describing the error
//   - a longer explanation
//   - the category it belongs to
//
// # Error Categories
//
//   - runtime: evaluator and scheduler failures inside the engine
//   - config: configuration loading and validation
//   - publish: static output publishing
//   - inspect: the live inspector server
//   - cli: command line usage
//
// # Usage
//
//	err := errors.New("E201").
//	    WithDetail("attribute binding 3 (class) panicked").
//	    Wrap(cause)
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E201: Evaluator panicked
//	//
//	//   attribute binding 3 (class) panicked
package errors
