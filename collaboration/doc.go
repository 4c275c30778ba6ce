// Package collaboration drives an assigned team of agents through one of
// six cooperative-execution protocols (peer-to-peer, hierarchical,
// consensus, competitive, cooperative, pipeline) to a terminal session
// state.
//
// Protocol failures never escape the coordinator: they are captured into
// the session, which transitions to failed and stays introspectable.
package collaboration
