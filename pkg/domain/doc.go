/*
Package domain contains the intermediate representation of an actor machine
consumed by the scheduling core.

It defines the entities the controller reasons about: ports, conditions,
transitions, scopes and the actor itself, plus the runtime snapshot of a
simulated actor instance. The package is kept pure and free of I/O so that
every other layer (controller, strategies, adapters) can share it.

# Key Entities

  - Port: a named input or output endpoint with an element type and capacity.
  - Condition: a guard, either a host predicate or a channel availability check.
  - Transition: an atomic firing, guarded by a conjunction of condition indices.
  - Scope: a persistent or transient bag of variables.
  - Actor: the frozen description handed to the controller.
  - Instance: the runtime snapshot of one simulated actor (program counter, scopes, FIFOs).
*/
package domain
