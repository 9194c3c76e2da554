/*
Package markov provides an in-memory, first-order Markov chain model over
string tokens.

Chains are ingested with AddChain. Every distinct token becomes a Node with a
stable, model-scoped id, and every observed transition (including the implicit
transitions from Start and to End) increments a counter. The model can then be
walked with Generate or GenerateStream, which sample each step with probability
proportional to the recorded counts, or rendered as a Graphviz graph with
WriteDOT.

A Model is built by a single writer and is read-only afterwards; generation
and export may then be called from multiple goroutines.
*/
package markov
