// Package enc evaluates a linear classifier's decision function under
// CKKS homomorphic encryption. It exists to show that an adversarial
// example crafted against the plaintext hyperplane transfers unchanged
// to an encrypted-inference deployment of the same model: the server
// computing w·x over ciphertexts sees the flipped score too.
package enc

import (
	"fmt"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/he/hefloat"
)

// CryptoSystem bundles the CKKS primitives needed to score a vector.
type CryptoSystem struct {
	params    hefloat.Parameters
	encoder   *hefloat.Encoder
	encryptor *rlwe.Encryptor
	decryptor *rlwe.Decryptor
	eval      *hefloat.Evaluator
}

// NewCryptoSystem generates parameters and keys for ring degree 2^logN.
// Rotation keys are generated for every power-of-two step below the
// slot count, which is what the inner-product fold uses.
func NewCryptoSystem(logN int) (*CryptoSystem, error) {
	params, err := hefloat.NewParametersFromLiteral(hefloat.ParametersLiteral{
		LogN: logN,
		Q: []uint64{0x200000008001, 0x400018001, // 45 + 9 x 34
			0x3fffd0001, 0x400060001,
			0x400068001, 0x3fff90001,
			0x400080001, 0x4000a8001,
			0x400108001, 0x3ffeb8001},
		P:               []uint64{0x7fffffd8001, 0x7fffffc8001}, // 43, 43
		LogDefaultScale: 40,
	})
	if err != nil {
		return nil, fmt.Errorf("building parameters: %w", err)
	}

	kgen := hefloat.NewKeyGenerator(params)
	sk, pk := kgen.GenKeyPairNew()

	var galEls []uint64
	for i := 1; i < params.MaxSlots(); i *= 2 {
		galEls = append(galEls, params.GaloisElement(i))
	}

	rlk := kgen.GenRelinearizationKeyNew(sk)
	evk := rlwe.NewMemEvaluationKeySet(rlk, kgen.GenGaloisKeysNew(galEls, sk)...)

	return &CryptoSystem{
		params:    params,
		encoder:   hefloat.NewEncoder(params),
		encryptor: hefloat.NewEncryptor(params, pk),
		decryptor: hefloat.NewDecryptor(params, sk),
		eval:      hefloat.NewEvaluator(params, evk),
	}, nil
}

// MaxSlots returns the number of vector entries one ciphertext holds.
func (cs *CryptoSystem) MaxSlots() int {
	return cs.params.MaxSlots()
}

// Decision computes w·x + b with both vectors encrypted, decrypting
// only the final scalar. The sign and magnitude match the plaintext
// decision function up to CKKS noise.
func (cs *CryptoSystem) Decision(w, x []float64, b float64) (float64, error) {
	if len(x) != len(w) {
		return 0, fmt.Errorf("enc: input has %d features, weight vector has %d", len(x), len(w))
	}
	if len(x) == 0 {
		return 0, fmt.Errorf("enc: empty input")
	}
	if len(x) > cs.params.MaxSlots() {
		return 0, fmt.Errorf("enc: %d features exceed the %d available slots", len(x), cs.params.MaxSlots())
	}

	ctW, err := cs.encryptVector(w)
	if err != nil {
		return 0, fmt.Errorf("encrypting weights: %w", err)
	}
	ctX, err := cs.encryptVector(x)
	if err != nil {
		return 0, fmt.Errorf("encrypting input: %w", err)
	}

	prod, err := cs.eval.MulNew(ctW, ctX)
	if err != nil {
		return 0, fmt.Errorf("multiplying ciphertexts: %w", err)
	}
	if err := cs.eval.Relinearize(prod, prod); err != nil {
		return 0, fmt.Errorf("relinearizing: %w", err)
	}

	// Rotate-and-add fold: slots past len(x) are zero, so after the
	// last doubling slot 0 holds the full sum.
	for i := 1; i < len(x); i *= 2 {
		rotated, err := cs.eval.RotateNew(prod, i)
		if err != nil {
			return 0, fmt.Errorf("rotating by %d: %w", i, err)
		}
		if err := cs.eval.Add(prod, rotated, prod); err != nil {
			return 0, fmt.Errorf("accumulating: %w", err)
		}
	}

	pt := cs.decryptor.DecryptNew(prod)
	values := make([]complex128, 1)
	if err := cs.encoder.Decode(pt, values); err != nil {
		return 0, fmt.Errorf("decoding result: %w", err)
	}

	return real(values[0]) + b, nil
}

func (cs *CryptoSystem) encryptVector(v []float64) (*rlwe.Ciphertext, error) {
	pt := hefloat.NewPlaintext(cs.params, cs.params.MaxLevel())
	if err := cs.encoder.Encode(v, pt); err != nil {
		return nil, err
	}
	return cs.encryptor.EncryptNew(pt)
}
