package assets

import (
	qrcode "github.com/skip2/go-qrcode"
)

// QRPayload: 端末スキャン用の識別文字列。画像の中身はこの文字列だけ。
func QRPayload(assetCode string) string {
	return "VITALOPS:ASSET:" + assetCode
}

// QRImagePNG はラベル印字・画面表示用のPNGを返す
func QRImagePNG(payload string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	return qrcode.Encode(payload, qrcode.Medium, size)
}
