/*
Package bridge implements the two asset pipelines of a cross-chain bridge.

A Vault escrows a native asset. Lock moves funds into escrow and emits an
event for relayers; Release pays escrowed funds out once a transfer from
another chain has been proven.

A MintController manages a wrapped asset. MintWrapped creates supply once a
transfer has been proven; BurnWrapped destroys supply and emits an event for
relayers.

Inbound operations (Release, MintWrapped) pass the same gate, in order:

 1. the (source chain, nonce) pair must not be in the instance's replay ledger
 2. the instance's relayer set must authorize the transaction
 3. the Merkle proof must show the transaction is included in the transaction
    root the light client recorded for the transaction's block

Every operation either commits all of its effects or none of them.
*/
package bridge
