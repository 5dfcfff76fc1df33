package crypto

import (
	"crypto/ecdsa"
	"crypto/rand"
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
	"github.com/ethereum/go-ethereum/crypto"
)

// AddressPrefix defines the human-readable bech32 prefix used when rendering
// a principal as text.
type AddressPrefix string

const (
	// SinsPrefix is used for ordinary pool/claim/ledger principals.
	SinsPrefix AddressPrefix = "sins"
	// AnonymousPrefix marks the reserved anonymous principal; coverage
	// purchases must reject a covered_account bearing this prefix.
	AnonymousPrefix AddressPrefix = "anon"
)

// Address represents a 20-byte principal with a bech32 human-readable
// prefix, the already-authenticated identity of a caller. Authentication
// itself is out of scope; this type only carries the result.
type Address struct {
	prefix AddressPrefix
	bytes  []byte
}

// NewAddress constructs an Address from a 20-byte principal and prefix.
func NewAddress(prefix AddressPrefix, b []byte) (Address, error) {
	if len(b) != 20 {
		return Address{}, fmt.Errorf("address must be 20 bytes long, got %d", len(b))
	}
	cloned := append([]byte(nil), b...)
	return Address{prefix: prefix, bytes: cloned}, nil
}

// MustNewAddress constructs an address and panics if the input is invalid.
func MustNewAddress(prefix AddressPrefix, b []byte) Address {
	addr, err := NewAddress(prefix, b)
	if err != nil {
		panic(err)
	}
	return addr
}

// IsZero reports whether the address carries no principal bytes at all,
// i.e. it is the Go zero value rather than a decoded 20-byte principal.
func (a Address) IsZero() bool {
	return len(a.bytes) == 0
}

// IsAnonymous reports whether the address is the reserved anonymous
// principal. purchase_coverage rejects anonymous covered accounts.
func (a Address) IsAnonymous() bool {
	if a.prefix == AnonymousPrefix {
		return true
	}
	for _, b := range a.bytes {
		if b != 0 {
			return false
		}
	}
	return len(a.bytes) > 0
}

func (a Address) String() string {
	if a.IsZero() {
		return ""
	}
	conv, err := bech32.ConvertBits(a.bytes, 8, 5, true)
	if err != nil {
		panic(err)
	}
	encoded, err := bech32.Encode(string(a.prefix), conv)
	if err != nil {
		panic(err)
	}
	return encoded
}

// Bytes returns a defensive copy of the underlying 20-byte principal.
func (a Address) Bytes() []byte {
	return append([]byte(nil), a.bytes...)
}

// Equal reports whether two addresses carry the same principal bytes,
// ignoring the human-readable prefix used to render them.
func (a Address) Equal(other Address) bool {
	if len(a.bytes) != len(other.bytes) {
		return false
	}
	for i := range a.bytes {
		if a.bytes[i] != other.bytes[i] {
			return false
		}
	}
	return true
}

// Prefix returns the human-readable prefix associated with the address.
func (a Address) Prefix() AddressPrefix {
	return a.prefix
}

// MarshalText renders the address as bech32 text (empty for the zero value).
func (a Address) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText parses text written by MarshalText.
func (a *Address) UnmarshalText(text []byte) error {
	if len(text) == 0 {
		*a = Address{}
		return nil
	}
	addr, err := DecodeAddress(string(text))
	if err != nil {
		return err
	}
	*a = addr
	return nil
}

// DecodeAddress parses a bech32-encoded principal string.
func DecodeAddress(addrStr string) (Address, error) {
	prefix, decoded, err := bech32.Decode(addrStr)
	if err != nil {
		return Address{}, fmt.Errorf("invalid bech32 string: %w", err)
	}
	conv, err := bech32.ConvertBits(decoded, 5, 8, false)
	if err != nil {
		return Address{}, fmt.Errorf("error converting bits: %w", err)
	}
	addr, err := NewAddress(AddressPrefix(prefix), conv)
	if err != nil {
		return Address{}, err
	}
	return addr, nil
}

// --- Key Management ---

type PrivateKey struct {
	*ecdsa.PrivateKey
}

type PublicKey struct {
	*ecdsa.PublicKey
}

// GeneratePrivateKey creates a fresh secp256k1 keypair for a test or
// operator-controlled principal.
func GeneratePrivateKey() (*PrivateKey, error) {
	key, err := ecdsa.GenerateKey(crypto.S256(), rand.Reader)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}

// Bytes returns the byte representation of the private key.
func (k *PrivateKey) Bytes() []byte {
	return crypto.FromECDSA(k.PrivateKey)
}

func (k *PrivateKey) PubKey() *PublicKey {
	return &PublicKey{&k.PrivateKey.PublicKey}
}

// Address derives the 20-byte principal from the public key, the same way
// the underlying chain derives account addresses from keys.
func (k *PublicKey) Address() Address {
	addrBytes := crypto.PubkeyToAddress(*k.PublicKey).Bytes()
	return MustNewAddress(SinsPrefix, addrBytes)
}

func PrivateKeyFromBytes(b []byte) (*PrivateKey, error) {
	key, err := crypto.ToECDSA(b)
	if err != nil {
		return nil, err
	}
	return &PrivateKey{key}, nil
}
