package main

import (
	"encoding/hex"
	"fmt"
	"io"

	"github.com/iov-one/treasury/crypto"
)

func cmdKeys(input io.Reader, output io.Writer, args []string) error {
	fl := newFlagSet("keys", `
Generate an ed25519 key and print the principal it controls. Use --seed to
restore the principal of an existing key. With --path the seed is a master
seed and the key is derived from it following SLIP-0010.
`)
	var (
		seedFl = fl.String("seed", "", "Hex encoded 32 bytes seed of an existing key, or the master seed when --path is given.")
		pathFl = fl.String("path", "", `Derivation path, for example "m/44'/234'/0'".`)
	)
	if err := fl.Parse(args); err != nil {
		return err
	}

	var (
		key *crypto.PrivateKey
		err error
	)
	switch {
	case *seedFl == "" && *pathFl != "":
		return fmt.Errorf("derivation requires a master seed")
	case *seedFl == "":
		key, err = crypto.GenPrivKeyEd25519()
	default:
		raw, decErr := hex.DecodeString(*seedFl)
		if decErr != nil {
			return fmt.Errorf("invalid seed: %s", decErr)
		}
		if *pathFl != "" {
			key, err = crypto.DerivePrivKeyEd25519(raw, *pathFl)
		} else {
			key, err = crypto.PrivKeyEd25519FromSeed(raw)
		}
	}
	if err != nil {
		return err
	}

	addr := key.Address()
	bech, err := addr.Bech32()
	if err != nil {
		return err
	}
	return printJSON(output, struct {
		Seed    string `json:"seed"`
		Address string `json:"address"`
		Bech32  string `json:"bech32"`
	}{key.Seed(), addr.String(), bech})
}
