/*
Package treasury defines the common interfaces that tie the treasury
subpackages together, as well as implementations of the simpler shared
components (when interfaces would be too much overhead).

State lives in a KVStore. Operations that must be applied atomically work on a
cache wrap of the store and either Write it to the parent on success or
Discard it on failure.

Extensions live under x/. The x/multisig extension is the quorum-gated
transfer engine; x/cash and x/token provide the native currency bank and the
fungible token ledger it moves funds with.

Logging goes through the logger carried by context.Context; see WithLogger
and GetLogger.
*/
package treasury
