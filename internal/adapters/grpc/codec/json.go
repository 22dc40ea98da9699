// Package codec は gRPC のメッセージを JSON で送受信するコーデックです。
// サービス定義は timeclockv1 パッケージに手書きされており、protobuf のコード生成を必要としません。
package codec

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// Name はコンテンツサブタイプです。Content-Type は application/grpc+json になります。
const Name = "json"

func init() {
	encoding.RegisterCodec(JSON{})
}

// JSON は encoding.Codec の JSON 実装です。
type JSON struct{}

// Marshal は v を JSON に変換します。
func (JSON) Marshal(v any) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("codec: cannot marshal nil message")
	}
	return json.Marshal(v)
}

// Unmarshal は data を v に復元します。空のメッセージはゼロ値のままです。
func (JSON) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

// Name はコーデック名を返します。
func (JSON) Name() string {
	return Name
}
