// Package vdom defines the virtual node tree the reconciler consumes.
//
// A VNode is a closed tagged variant: Element, Text, Fragment, Component,
// Async (a component whose definition loads asynchronously) and KeepAlive.
// Only the fields relevant to a node's Kind are meaningful. Once a VNode is
// mounted the reconciler fills in Host (for elements and text) or Instance
// (for component kinds); a VNode is mounted into at most one container at a
// time.
//
// # Element API
//
// Elements are created using variadic factory functions:
//
//	Ul(Class("list"),
//	    Li(Key("a"), Text("A")),
//	    Li(Key("b"), Text("B")),
//	)
//
// Arguments may be attributes, event handlers, child nodes, plain strings
// (text children) or Content (the element's whole content as one string).
//
// # Components
//
// Comp wraps a Component definition into a component VNode, collecting props,
// event listeners and slots:
//
//	Comp(counter, Key("c1"), Prop("start", 3), On("change", onChange))
//
// Event listener props are named "on" followed by the capitalized event name;
// EventProp builds that name.
package vdom
