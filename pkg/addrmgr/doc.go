// Package addrmgr coordinates the LE address the local controller presents
// to peers and the controller's filter accept and resolving lists.
//
// Every change to the programmed address or to those lists happens behind a
// barrier: registered clients (scanners, advertisers, initiators) are asked
// to pause, the change is sent once all of them have acknowledged, and they
// are resumed when the queue of pending changes has drained. Commands reach
// the controller one at a time, in the order they were requested.
//
// All manager state is owned by a handler.Handler. Public methods marshal
// onto it and never block, except UnregisterSync and the state accessors.
package addrmgr
