// Package canon provides the canonical encoding used for every identity in
// achemkit: multiset keys, network hashes and stored run fingerprints.
//
// Key design constraints:
//   - NO float types in canonical form; rates are formatted as strings first
//   - Strings are NFC normalized so visually identical species collide
//   - Object keys are sorted; arrays keep their order
//   - Hashes are SHA-256 with a versioned domain prefix
package canon
