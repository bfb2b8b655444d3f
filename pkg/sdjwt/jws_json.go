package sdjwt

// CompactFromFlattenedJSON lifts a flattened JWS JSON serialization (spec.md
// §6.2, SUPPLEMENTED FEATURES 4) back into the compact
// `<JWS>~<D1>~...~<Dn>~[<KB-JWT>]` form Verifier.Verify expects, so a
// presentation received over a JSON-based transport runs through the same
// C8 pipeline as one received in compact form.
func CompactFromFlattenedJSON(env *FlattenedJSON) (string, error) {
	if env == nil {
		return "", newErr(MalformedPresentation, "presentation", nil)
	}
	jws := env.Protected + "." + env.Payload + "." + env.Signature
	return combine(jws, env.Header.Disclosures, env.Header.KBJWT), nil
}

// CompactFromGeneralJSON lifts one signature (by index) of a general JWS
// JSON serialization into compact form, following the same convention
// IssueAsGeneralJSON uses when producing it: disclosures and the KB-JWT
// travel in the chosen signature's unprotected header.
func CompactFromGeneralJSON(env *GeneralJSON, signatureIndex int) (string, error) {
	if env == nil || signatureIndex < 0 || signatureIndex >= len(env.Signatures) {
		return "", newErr(MalformedPresentation, "presentation", nil)
	}
	sig := env.Signatures[signatureIndex]
	jws := sig.Protected + "." + env.Payload + "." + sig.Signature
	return combine(jws, sig.Header.Disclosures, sig.Header.KBJWT), nil
}
