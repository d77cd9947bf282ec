// Package publicid は外部公開用識別子の生成を提供する。
// すべてのエンティティは内部ID（UUID）と独立した公開IDを持ち、
// 内部IDを外部に漏らさない。
package publicid

import (
	"crypto/rand"
	"fmt"
)

// alphabet は公開IDに使用するbase62のアルファベット。
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Length は公開IDの文字数。
// 62^12 ≈ 3.2e21 通りであり、衝突確率は実用上無視できる。
// 万一衝突した場合もDBの一意制約が検出する。
const Length = 12

// New は12文字のランダムな公開IDを生成する。
func New() (string, error) {
	id := make([]byte, Length)
	// モジュロバイアスを避けるため、アルファベット長の倍数に収まる値だけを採用する
	limit := byte(256 - 256%len(alphabet)) // 248

	buf := make([]byte, 1)
	for i := 0; i < Length; {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		if buf[0] >= limit {
			continue
		}
		id[i] = alphabet[int(buf[0])%len(alphabet)]
		i++
	}

	return string(id), nil
}
