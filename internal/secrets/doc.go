// Package secrets provides the encryption used for exported secrets.
//
// Each secret file is encrypted independently with a key derived from the
// operator's passphrase:
//
//  1. A random 16-byte salt and scrypt (N=2^15, r=8, p=1) derive a 256-bit key
//  2. NaCl secretbox (XSalsa20-Poly1305) seals the file with a random 24-byte nonce
//  3. Magic, work factor, salt and nonce are prepended to the sealed box
//
// Secretbox is authenticated: a wrong passphrase and a tampered ciphertext
// both fail to open and cannot be told apart. Re-encrypting the same file
// produces different output.
//
// # Passphrase Handling
//
// The passphrase lives in a memguard enclave for the whole run (Passphrase)
// and is decrypted into a locked buffer only around each Encrypt/Decrypt
// call.
//
// # File Naming
//
// The ciphertext of secret "ssh/id_ed25519" is stored as
// "ssh/id_ed25519.enc" next to its unencrypted checksum sidecar
// "ssh/id_ed25519.sha256".
package secrets
