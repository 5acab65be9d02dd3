/*
Package ports defines the driven ports (interfaces) of the actor machine compiler.

These interfaces decouple the scheduling core from external implementations,
allowing it to work with various description sources, caches and host
expression languages.

# Key Interfaces

  - ActorLoader: Retrieves raw actor descriptions (e.g., from Loam, a directory or memory).
  - ControllerCache: Stores built controller graphs keyed by description hash.
  - ExpressionEvaluator: Evaluates host expressions (predicates and transition bodies).
  - ChannelMetadata: Provides buffer capacities used to size availability checks.
*/
package ports
