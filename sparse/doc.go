/*
Package sparse implements the coordinate format (COO) sparse tensor used to
assemble finite element operators.

A COOTensor stores nnz entries. Column j of the index matrix is the
multi-index of entry j over the sparse dimensions; the optional payload has
shape (nnz, *denseShape), so every entry carries the same trailing batch of
values (several right hand sides sharing one sparsity pattern, for example).
A tensor without a payload is structural: a stored coordinate is a known
zero, an absent coordinate is unknown.

Tensors are immutable. Operations return new tensors, and Ravel, Transpose
and Tril may share the receiver's payload handle (see Values). Duplicate
coordinates are legal until Coalesce merges them; ToDense accumulates them
on the fly.

All arithmetic goes through the backend.Backend the tensor was built with;
there is no package level default backend.
*/
package sparse
