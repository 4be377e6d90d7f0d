package cli

import (
	"bytes"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/eosbp/bpclaim/common/crypto"
	"github.com/eosbp/bpclaim/common/errors"
	"github.com/eosbp/bpclaim/common/wallet"
	"github.com/eosbp/bpclaim/module"
)

func readPassword(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	pb, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprint(os.Stderr, "\n")
	return pb, err
}

type passwordFlags struct {
	interactive bool
	secret      string
	password    string
}

func addPasswordFlags(cmd *cobra.Command) *passwordFlags {
	pf := &passwordFlags{}
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&pf.interactive, "interactive", "i", false, "Interactive mode for password input")
	flags.StringVarP(&pf.secret, "secret", "s", "", "KeySecret file path")
	flags.StringVarP(&pf.password, "password", "p", "", "Password for the keystore")
	return pf
}

func (pf *passwordFlags) get(prompt string) ([]byte, error) {
	switch {
	case pf.interactive:
		pb, err := readPassword(prompt)
		if err != nil {
			return nil, errors.Wrap(err, "fail to read password")
		}
		return pb, nil
	case pf.secret != "":
		pb, err := os.ReadFile(pf.secret)
		if err != nil {
			return nil, errors.IllegalArgumentError.Wrapf(err, "FailToReadKeySecret(path=%s)", pf.secret)
		}
		return bytes.TrimRight(pb, "\r\n"), nil
	default:
		return []byte(pf.password), nil
	}
}

func writeKeyStore(cmd *cobra.Command, w module.Wallet, pb []byte, out string) error {
	ks, err := wallet.KeyStoreFromWallet(w, pb)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, ks, 0600); err != nil {
		return errors.Wrapf(err, "fail to write keystore(path=%s)", out)
	}
	pub, err := wallet.PublicKeyString(w)
	if err != nil {
		return err
	}
	cmd.Printf("%s ==> %s\n", pub, out)
	return nil
}

func newKeystoreGenCmd(c string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   c,
		Short: "Generate a new key into a keystore",
		Args:  ArgsWithDefaultErrorFunc(cobra.NoArgs),
	}
	pf := addPasswordFlags(cmd)
	out := cmd.PersistentFlags().StringP("out", "o", "keystore.json", "Output file path")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		pb, err := pf.get("Password: ")
		if err != nil {
			return err
		}
		w, err := wallet.New()
		if err != nil {
			return err
		}
		return writeKeyStore(cmd, w, pb, *out)
	}
	return cmd
}

func newKeystoreImportCmd(c string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   c + " KEY",
		Short: "Encrypt a private key (WIF or PVT_K1_) into a keystore",
		Args:  ArgsWithDefaultErrorFunc(cobra.MaximumNArgs(1)),
	}
	pf := addPasswordFlags(cmd)
	out := cmd.PersistentFlags().StringP("out", "o", "keystore.json", "Output file path")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		var key string
		if len(args) > 0 {
			key = args[0]
		} else {
			kb, err := readPassword("Private key: ")
			if err != nil {
				return errors.Wrap(err, "fail to read private key")
			}
			key = string(kb)
		}
		w, err := wallet.NewFromWIF(key)
		if err != nil {
			return errors.IllegalArgumentError.Wrap(err, "InvalidKey")
		}
		pb, err := pf.get("Password: ")
		if err != nil {
			return err
		}
		return writeKeyStore(cmd, w, pb, *out)
	}
	return cmd
}

func newKeystoreVerifyCmd(c string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   c + " KEYSTORE...",
		Short: "Verify keystore with the password",
		Args:  ArgsWithDefaultErrorFunc(cobra.MinimumNArgs(1)),
	}
	pf := addPasswordFlags(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		var failed error
		for _, arg := range args {
			kb, err := os.ReadFile(arg)
			if err != nil {
				return errors.IllegalArgumentError.Wrapf(err, "FailToReadKeyStore(path=%s)", arg)
			}
			pb, err := pf.get("Password: ")
			if err != nil {
				return err
			}
			if _, err := wallet.NewFromKeyStore(kb, pb); err != nil {
				cmd.Printf("%s FAIL err=%v\n", arg, err)
				failed = err
			} else {
				cmd.Printf("%s SUCCESS\n", arg)
			}
		}
		return failed
	}
	return cmd
}

func newKeystorePubKeyCmd(c string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   c + " [KEY]",
		Short: "Print the public key of a private key or a keystore",
		Args:  ArgsWithDefaultErrorFunc(cobra.MaximumNArgs(1)),
	}
	keystorePath := cmd.PersistentFlags().StringP("keystore", "k", "", "Keystore file path")
	k1 := cmd.PersistentFlags().Bool("k1", false, "Print in PUB_K1_ form")

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		var pub *crypto.PublicKey
		switch {
		case len(args) > 0:
			sk, err := crypto.ParsePrivateKey(args[0])
			if err != nil {
				return errors.IllegalArgumentError.Wrap(err, "InvalidKey")
			}
			pub = sk.PublicKey()
		case *keystorePath != "":
			kb, err := os.ReadFile(*keystorePath)
			if err != nil {
				return errors.IllegalArgumentError.Wrapf(err, "FailToReadKeyStore(path=%s)", *keystorePath)
			}
			if pub, err = wallet.ReadPublicKeyFromKeyStore(kb); err != nil {
				return err
			}
		default:
			return errors.IllegalArgumentError.New("NoKeyOrKeyStore")
		}
		if *k1 {
			cmd.Println(pub.StringK1())
		} else {
			cmd.Println(pub.String())
		}
		return nil
	}
	return cmd
}

func NewKeystoreCmd(c string) *cobra.Command {
	cmd := &cobra.Command{Use: c, Short: "Keystore manipulation"}
	cmd.AddCommand(newKeystoreGenCmd("gen"))
	cmd.AddCommand(newKeystoreImportCmd("import"))
	cmd.AddCommand(newKeystoreVerifyCmd("verify"))
	cmd.AddCommand(newKeystorePubKeyCmd("pubkey"))
	return cmd
}
