// Package userdata builds EC2 user data: multi-part MIME bundles in the
// format cloud-init understands, and text split around parameter
// placeholders so that CloudFormation can fill them in with Fn::Join.
package userdata

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"mime/multipart"
	"net/textproto"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"
)

// Part is one file of a multi-part user data message.
type Part struct {
	// Filename is reported to cloud-init in the part's Content-Disposition.
	Filename string

	// Subtype is the MIME subtype of the text part, such as "cloud-config"
	// or "x-shellscript".
	Subtype string

	Content string
}

// ReadPart reads the file at the given path into a Part. The part's
// Filename is the base name of the path.
func ReadPart(path, subtype string) (Part, error) {
	src, err := ioutil.ReadFile(path)
	if err != nil {
		return Part{}, err
	}
	return Part{
		Filename: filepath.Base(path),
		Subtype:  subtype,
		Content:  string(src),
	}, nil
}

// Combine returns a multipart/mixed MIME message with one text part per
// given part, in order.
func Combine(parts []Part) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	for _, part := range parts {
		if part.Subtype == "" {
			return "", fmt.Errorf("part %q has no MIME subtype", part.Filename)
		}
		if !utf8.ValidString(part.Content) {
			return "", fmt.Errorf("part %q is not valid UTF-8 text", part.Filename)
		}

		charset, encoding := "us-ascii", "7bit"
		if !isASCII(part.Content) {
			charset, encoding = "utf-8", "8bit"
		}

		header := make(textproto.MIMEHeader)
		header.Set("Content-Type", fmt.Sprintf("text/%s; charset=%q", part.Subtype, charset))
		header.Set("MIME-Version", "1.0")
		header.Set("Content-Transfer-Encoding", encoding)
		header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", part.Filename))

		pw, err := w.CreatePart(header)
		if err != nil {
			return "", err
		}
		if _, err := pw.Write([]byte(part.Content)); err != nil {
			return "", err
		}
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "Content-Type: multipart/mixed; boundary=%q\r\n", w.Boundary())
	msg.WriteString("MIME-Version: 1.0\r\n\r\n")
	msg.Write(body.Bytes())
	return msg.String(), nil
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// InjectParams splits text into tokens around "{{ name }}" placeholders,
// replacing each placeholder with the value of the named parameter. Every
// line of the text, including the last, is terminated with a newline, and
// text between placeholders is kept even when it is empty, so joining the
// tokens with an empty delimiter reproduces the text with the parameters
// substituted.
func InjectParams(text string, params map[string]interface{}) []interface{} {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var tokens []interface{}
	for _, line := range strings.Split(text, "\n") {
		tokens = append(tokens, injectLine(line+"\n", names, params)...)
	}
	return tokens
}

func injectLine(line string, names []string, params map[string]interface{}) []interface{} {
	for _, name := range names {
		placeholder := "{{ " + name + " }}"
		pos := strings.Index(line, placeholder)
		if pos == -1 {
			continue
		}
		tokens := injectLine(line[:pos], names, params)
		tokens = append(tokens, params[name])
		return append(tokens, injectLine(line[pos+len(placeholder):], names, params)...)
	}
	return []interface{}{line}
}
