/*
Package batchverify checks files of signed messages against the addresses that
are supposed to have signed them.

Each record names a message, a signature and the signer's address:

	[
	  {"message": "helloworld", "signature": "SIG_K1_...", "signer": "STM..."},
	  {"message": "transfer 1.000 HIVE", "signature": "GjzL...", "signer": "STM..."}
	]

Signatures are accepted in the legacy form behind its SIG_K1_ prefix, in the
base58 wire form, or as the hex V ‖ r ‖ s buffer Hive transactions carry.

# Usage

	verifier := batchverify.NewVerifier().
		WithConfig(batchverify.Config{Workers: 8, Chain: hivekeys.ChainHive})

	results, err := verifier.VerifyFile(ctx, "signatures.json")
	if err != nil {
		return err
	}
	summary := batchverify.Summarize(results)

Records are verified concurrently and results come back in input order.  A
record that fails to verify is reported in its Result and does not stop the
batch; only cancellation of the context does.

# Input formats

JSONParser reads an array of objects and CSVParser reads a headed CSV file.
Both default to the field names message, signature and signer and let the
caller override them.
*/
package batchverify
