package hivekeys_test

import (
	"fmt"

	"github.com/mahdiidarabi/hivekeys/pkg/hivekeys"
)

// This example derives the owner key of an account, signs a message and
// recovers the signer's address from the signature alone.
func Example() {
	key, err := hivekeys.FromCredentials("test", "test", hivekeys.RoleOwner)
	if err != nil {
		fmt.Println(err)
		return
	}

	msg := []byte("helloworld")
	sig, err := hivekeys.Sign(key, msg)
	if err != nil {
		fmt.Println(err)
		return
	}

	pub, err := sig.Recover(msg)
	if err != nil {
		fmt.Println(err)
		return
	}
	addr, err := pub.Address(hivekeys.ChainHive)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println(key)
	fmt.Println(addr)

	// Output:
	// PrivateKey(redacted)
	// STM5jixkNBqJXNtX9vy2GjaqpX2d5jXrcjRXgh1WU5fXZhnDJrLM8
}

func ExampleNormalizeRecoveryMarker() {
	for _, v := range []uint64{0, 28, 31, 38} {
		parity, err := hivekeys.NormalizeRecoveryMarker(v)
		if err != nil {
			fmt.Println(err)
			continue
		}
		fmt.Println(v, parity)
	}

	_, err := hivekeys.NormalizeRecoveryMarker(4)
	fmt.Println(err)

	// Output:
	// 0 0
	// 28 1
	// 31 0
	// 38 1
	// recovery marker 4 does not belong to a known scheme
}
