// Package gate provides a declarative, attribute-based permission engine.
//
// A Registry declares the closed set of resource types and the actions each one
// exposes. Role templates turn role parameters into Rules, and a Resolver
// validates those Rules against the Registry to produce an immutable PolicySet.
// A Checker evaluates a PolicySet: static rules are returned as is, dynamic
// rules are invoked with the (possibly nil) resource instance.
//
// The package does no I/O. Fetching the resource instance and deciding what a
// denial means for the caller belong to the surrounding application.
//
// The Resolver is generic over the role parameter type:
//   - Resolver[string] when a template only needs a user id
//   - Resolver[Params] for richer, application-defined parameters
package gate
