package multisig

import "github.com/vocdoni/spark-core/crypto/group"

func intToScalar(n int) *group.Scalar {
	if n >= 0 {
		return group.ScalarFromUint64(uint64(n))
	}
	return group.ScalarFromUint64(uint64(-n)).Neg()
}

// LagrangeCoefficient returns λ_id, the Lagrange coefficient of player id
// over the signer set, evaluated at x=0: λ_id = Π_{j∈set, j≠id} j/(j-id).
func LagrangeCoefficient(id int, set []int) *group.Scalar {
	result := group.ScalarFromUint64(1)
	for _, j := range set {
		if j == id {
			continue
		}
		num := intToScalar(j)
		den := intToScalar(j - id)
		result = result.Mul(num.Mul(den.Invert()))
	}
	return result
}
