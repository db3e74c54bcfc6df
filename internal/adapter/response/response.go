// Package response reshapes raw backend and fixture payloads into the
// normalized shapes callers expect. Every transform is total: missing or
// malformed fields fall back to defaults instead of failing, and fields the
// transform does not own are preserved.
package response

import (
	"math"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/xiaot623/gogo/chatclient/internal/domain"
)

// Transform reshapes an envelope-shaped payload.
type Transform func(payload []byte) []byte

// AdminUserList maps data{list,total,pageSize,pageNum} to
// data{records,current,pages,total}.
func AdminUserList(payload []byte) []byte {
	payload = objectOrEmpty(payload)
	page := gjson.GetBytes(payload, "data")

	records, count := arrayOrEmpty(page.Get("list"))
	total := intOr(page.Get("total"), count)
	pageSize := intOr(page.Get("pageSize"), count)
	if pageSize < 1 {
		pageSize = 1
	}
	current := intOr(page.Get("pageNum"), 1)
	pages := int(math.Ceil(float64(total) / float64(pageSize)))
	if pages < 1 {
		pages = 1
	}

	data := []byte("{}")
	data, _ = sjson.SetRawBytes(data, "records", []byte(records))
	data, _ = sjson.SetBytes(data, "current", current)
	data, _ = sjson.SetBytes(data, "pages", pages)
	data, _ = sjson.SetBytes(data, "total", total)

	return setData(payload, data)
}

// SessionCreate unwraps data.id so callers receive a bare identifier.
// A bare data value is kept; a missing one becomes null.
func SessionCreate(payload []byte) []byte {
	payload = objectOrEmpty(payload)
	data := gjson.GetBytes(payload, "data")

	raw := "null"
	if id := data.Get("id"); data.IsObject() && present(id) {
		raw = id.Raw
	} else if present(data) {
		raw = data.Raw
	}
	return setData(payload, []byte(raw))
}

// ChatMessagePage adds senderType and contents to every record and
// reverses the oldest-first source order to newest-first.
func ChatMessagePage(payload []byte) []byte {
	payload = objectOrEmpty(payload)
	page := gjson.GetBytes(payload, "data")

	list := page.Get("list")
	items := []gjson.Result{}
	if list.IsArray() {
		items = list.Array()
	}

	normalized := make([]string, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		normalized = append(normalized, normalizeMessage(items[i]))
	}

	total := intOr(page.Get("total"), len(items))
	pageSize := intOr(page.Get("pageSize"), len(items))
	pageNum := intOr(page.Get("pageNum"), 1)

	data := []byte("{}")
	data, _ = sjson.SetRawBytes(data, "records", []byte("["+strings.Join(normalized, ",")+"]"))
	data, _ = sjson.SetBytes(data, "total", total)
	data, _ = sjson.SetBytes(data, "pageNum", pageNum)
	data, _ = sjson.SetBytes(data, "pageSize", pageSize)

	return setData(payload, data)
}

func normalizeMessage(item gjson.Result) string {
	out := "{}"
	if item.IsObject() {
		out = item.Raw
	}

	role := item.Get("role")
	sender := domain.SenderAI
	if role.Type == gjson.String {
		sender = domain.SenderTypeFor(role.Str)
	}
	out, _ = sjson.Set(out, "senderType", string(sender))

	if content := item.Get("content"); content.Exists() {
		out, _ = sjson.SetRaw(out, "contents", content.Raw)
	}
	return out
}

func setData(payload, data []byte) []byte {
	out, err := sjson.SetRawBytes(payload, "data", data)
	if err != nil {
		out, _ = sjson.SetRawBytes([]byte("{}"), "data", data)
	}
	return out
}

func objectOrEmpty(payload []byte) []byte {
	if len(payload) == 0 || !gjson.ValidBytes(payload) || !gjson.ParseBytes(payload).IsObject() {
		return []byte("{}")
	}
	// sjson edits in place when capacity allows; never touch the caller's slice.
	return append([]byte(nil), payload...)
}

func arrayOrEmpty(r gjson.Result) (string, int) {
	if !r.IsArray() {
		return "[]", 0
	}
	return r.Raw, len(r.Array())
}

func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

func intOr(r gjson.Result, def int) int {
	if !present(r) {
		return def
	}
	return int(r.Int())
}
