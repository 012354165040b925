package password

import "testing"

func TestHashVerify_RoundTrip(t *testing.T) {
	// Parámetros bajos para que el test sea rápido.
	p := Params{Memory: 8 * 1024, Time: 1, Parallelism: 1, KeyLen: 32}

	phc, err := Hash(p, "Sup3r-secreta!")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !Verify("Sup3r-secreta!", phc) {
		t.Fatal("valid password should verify")
	}
	if Verify("otra-cosa", phc) {
		t.Fatal("wrong password should not verify")
	}
}

func TestHash_EmptyPassword(t *testing.T) {
	if _, err := Hash(DefaultParams, ""); err == nil {
		t.Fatal("empty password should error")
	}
}

func TestVerify_MalformedPHC(t *testing.T) {
	for _, phc := range []string{
		"",
		"$argon2id$v=19$garbage",
		"$bcrypt$whatever",
		"$argon2id$v=18$m=8,t=1,p=1$c2FsdA$ZGs",
	} {
		if Verify("x", phc) {
			t.Fatalf("malformed phc should not verify: %q", phc)
		}
	}
}

func TestPolicy_Validate(t *testing.T) {
	p := Policy{MinLength: 8, RequireUpper: true, RequireDigit: true}

	if ok, _ := p.Validate("Abcdefg1"); !ok {
		t.Fatal("conforming password rejected")
	}
	ok, reasons := p.Validate("abc1")
	if ok {
		t.Fatal("short password accepted")
	}
	want := map[string]bool{"too_short": true, "missing_upper": true}
	for _, r := range reasons {
		if !want[r] {
			t.Fatalf("unexpected reason %q", r)
		}
		delete(want, r)
	}
	if len(want) != 0 {
		t.Fatalf("missing reasons: %v", want)
	}
}
