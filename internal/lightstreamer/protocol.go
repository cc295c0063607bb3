package lightstreamer

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Text protocol subset spoken over the websocket: session creation, control
// requests and the server frames the client reacts to. One frame per line,
// lines separated by CRLF.

const (
	wsSubprotocol = "TLCP-2.4.0.lightstreamer.com"
	protocolCID   = "mgQkwtwdysogQz2BJ4Ji kOj2Bg"
)

func encodeCreateSession(adapterSet, user, password string) string {
	v := url.Values{}
	v.Set("LS_adapter_set", adapterSet)
	v.Set("LS_cid", protocolCID)
	if user != "" {
		v.Set("LS_user", user)
	}
	if password != "" {
		v.Set("LS_password", password)
	}
	return "create_session\r\n" + v.Encode() + "\r\n"
}

func encodeSubscribe(reqID, subID int, sub *Subscription) string {
	v := url.Values{}
	v.Set("LS_reqId", strconv.Itoa(reqID))
	v.Set("LS_op", "add")
	v.Set("LS_subId", strconv.Itoa(subID))
	v.Set("LS_mode", string(sub.Mode()))
	v.Set("LS_group", strings.Join(sub.Items(), " "))
	v.Set("LS_schema", strings.Join(sub.Fields(), " "))
	if adapter := sub.DataAdapter(); adapter != "" {
		v.Set("LS_data_adapter", adapter)
	}
	v.Set("LS_snapshot", strconv.FormatBool(sub.RequestedSnapshot()))
	return "control\r\n" + v.Encode() + "\r\n"
}

// serverFrame is one parsed line from the server.
type serverFrame struct {
	kind string

	// CONOK
	sessionID string

	// CONERR / END / REQERR
	code    int
	message string
	reqID   int

	// SUBOK / U
	subID   int
	itemPos int
	data    string
}

func parseFrame(line string) (serverFrame, error) {
	tag, rest, _ := strings.Cut(line, ",")
	f := serverFrame{kind: tag}
	switch tag {
	case "WSOK", "PROBE", "NOOP", "SYNC", "CONS", "SERVNAME", "CLIENTIP", "LOOP":
		return f, nil
	case "CONOK":
		parts := strings.SplitN(rest, ",", 4)
		if len(parts) < 1 || parts[0] == "" {
			return f, &ProtocolError{Line: line, Reason: "missing session id"}
		}
		f.sessionID = parts[0]
		return f, nil
	case "CONERR", "END":
		code, msg, err := parseCodeMessage(rest)
		if err != nil {
			return f, &ProtocolError{Line: line, Reason: err.Error()}
		}
		f.code, f.message = code, msg
		return f, nil
	case "REQOK":
		if rest != "" {
			id, err := strconv.Atoi(rest)
			if err != nil {
				return f, &ProtocolError{Line: line, Reason: "bad request id"}
			}
			f.reqID = id
		}
		return f, nil
	case "REQERR":
		idStr, tail, ok := strings.Cut(rest, ",")
		if !ok {
			return f, &ProtocolError{Line: line, Reason: "missing error code"}
		}
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return f, &ProtocolError{Line: line, Reason: "bad request id"}
		}
		code, msg, err := parseCodeMessage(tail)
		if err != nil {
			return f, &ProtocolError{Line: line, Reason: err.Error()}
		}
		f.reqID, f.code, f.message = id, code, msg
		return f, nil
	case "SUBOK", "UNSUB", "EOS", "CS":
		idStr, _, _ := strings.Cut(rest, ",")
		id, err := strconv.Atoi(idStr)
		if err != nil {
			return f, &ProtocolError{Line: line, Reason: "bad subscription id"}
		}
		f.subID = id
		return f, nil
	case "U":
		parts := strings.SplitN(rest, ",", 3)
		if len(parts) != 3 {
			return f, &ProtocolError{Line: line, Reason: "expected subId,itemPos,data"}
		}
		subID, err := strconv.Atoi(parts[0])
		if err != nil {
			return f, &ProtocolError{Line: line, Reason: "bad subscription id"}
		}
		itemPos, err := strconv.Atoi(parts[1])
		if err != nil {
			return f, &ProtocolError{Line: line, Reason: "bad item position"}
		}
		f.subID, f.itemPos, f.data = subID, itemPos, parts[2]
		return f, nil
	default:
		return f, nil
	}
}

func parseCodeMessage(s string) (int, string, error) {
	codeStr, msg, _ := strings.Cut(s, ",")
	code, err := strconv.Atoi(codeStr)
	if err != nil {
		return 0, "", fmt.Errorf("bad error code %q", codeStr)
	}
	return code, msg, nil
}

// fieldPatch is one field position of a decoded update frame.
type fieldPatch struct {
	set   bool
	null  bool
	value string
}

// decodeUpdateData expands the pipe-separated value list of an update frame
// into exactly fieldCount patches. Encoding per value: empty means unchanged,
// "#" null, "$" the empty string, "^n" skips n unchanged fields, anything
// else is a percent-encoded value.
func decodeUpdateData(data string, fieldCount int) ([]fieldPatch, error) {
	patches := make([]fieldPatch, 0, fieldCount)
	for _, tok := range strings.Split(data, "|") {
		switch {
		case tok == "":
			patches = append(patches, fieldPatch{})
		case tok == "#":
			patches = append(patches, fieldPatch{set: true, null: true})
		case tok == "$":
			patches = append(patches, fieldPatch{set: true, value: ""})
		case strings.HasPrefix(tok, "^"):
			n, err := strconv.Atoi(tok[1:])
			if err != nil || n < 1 {
				return nil, &ProtocolError{Line: data, Reason: "bad skip count"}
			}
			for i := 0; i < n; i++ {
				patches = append(patches, fieldPatch{})
			}
		default:
			value, err := url.PathUnescape(tok)
			if err != nil {
				return nil, &ProtocolError{Line: data, Reason: "bad percent encoding"}
			}
			patches = append(patches, fieldPatch{set: true, value: value})
		}
	}
	if len(patches) != fieldCount {
		return nil, &ProtocolError{Line: data, Reason: fmt.Sprintf("expected %d fields, got %d", fieldCount, len(patches))}
	}
	return patches, nil
}
