package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestGetText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<table><tr><td id="cell"> <a href="x">File</a>&nbsp;<b>#</b> </td></tr></table>`,
	))
	if err != nil {
		t.Fatal(err)
	}
	node := doc.Find("#cell").Nodes[0]
	require.Equal(t, " File\u00a0# ", GetText(node))
	require.Equal(t, "File #", NormalizeText(GetText(node)))
}

func TestNormalizeText(t *testing.T) {
	cases := []struct {
		input  string
		expect string
	}{
		{input: "\u00a0", expect: ""},
		{input: "  Aye \n", expect: "Aye"},
		{input: "Action\u00a0Date", expect: "Action Date"},
		{input: "", expect: ""},
	}
	for _, test := range cases {
		require.Equal(t, test.expect, NormalizeText(test.input), test.input)
	}

	require.Equal(t, "Board of Supervisors", CollapseWhitespace(" Board  of\n\tSupervisors "))
}
