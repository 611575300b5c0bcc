/*
Package dsl provides a fluent Go builder for Turing machine descriptions.

It is an alternative to description files for tests, generated machines and
library users who want compile-time checking of their rule tables.

Example usage:

	desc, err := dsl.New("bb2").
		Variant(domain.BusyBeaver).
		Initial("a").Accept("h").
		On("a", '0').Write('1').Right().Go("b").
		On("a", '1').Write('1').Left().Go("b").
		On("b", '0').Write('1').Left().Go("a").
		On("b", '1').Write('1').Right().Go("h").
		Build()

Rules keep their declaration order, which is also their lookup order.
*/
package dsl
