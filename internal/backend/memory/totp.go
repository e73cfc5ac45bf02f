package memory

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/subtle"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	totpIssuer  = "Xenon"
	totpAccount = "Anon"
	totpDigits  = 6
	totpPeriod  = 30
	totpSkew    = 1
)

// ProvisionURI returns the otpauth URI an authenticator app enrols from.
func ProvisionURI(secret []byte) string {
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)

	v := url.Values{}
	v.Set("secret", enc.EncodeToString(secret))
	v.Set("issuer", totpIssuer)
	v.Set("period", strconv.Itoa(totpPeriod))
	v.Set("digits", strconv.Itoa(totpDigits))
	v.Set("algorithm", "SHA1")

	return "otpauth://totp/" + url.PathEscape(totpIssuer+":"+totpAccount) + "?" + v.Encode()
}

// Code returns the TOTP code for secret at t.
func Code(secret []byte, t time.Time) string {
	return hotp(secret, t.Unix()/totpPeriod)
}

func verifyCode(secret []byte, code string, now time.Time) bool {
	code = strings.TrimSpace(code)
	if len(code) != totpDigits || len(secret) == 0 {
		return false
	}
	base := now.Unix() / totpPeriod
	for step := int64(-totpSkew); step <= totpSkew; step++ {
		counter := base + step
		if counter < 0 {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(hotp(secret, counter)), []byte(code)) == 1 {
			return true
		}
	}
	return false
}

func hotp(secret []byte, counter int64) string {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], uint64(counter))

	mac := hmac.New(sha1.New, secret)
	_, _ = mac.Write(msg[:])
	sum := mac.Sum(nil)

	offset := sum[len(sum)-1] & 0x0f
	bin := (int(sum[offset])&0x7f)<<24 |
		(int(sum[offset+1])&0xff)<<16 |
		(int(sum[offset+2])&0xff)<<8 |
		(int(sum[offset+3]) & 0xff)

	return fmt.Sprintf("%0*d", totpDigits, bin%1000000)
}
