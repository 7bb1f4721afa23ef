package epubdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContainer(t *testing.T) {
	tests := []struct {
		name    string
		xml     string
		want    string
		wantErr error
	}{
		{
			name: "single rootfile",
			xml:  containerFor("OPS/book.opf").data,
			want: "OPS/book.opf",
		},
		{
			name: "package rootfile wins",
			xml: `<container xmlns="urn:oasis:names:tc:opendocument:xmlns:container"><rootfiles>
  <rootfile full-path="book.pdf" media-type="application/pdf"/>
  <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
</rootfiles></container>`,
			want: "OEBPS/content.opf",
		},
		{
			name: "first rootfile when none is a package",
			xml: `<container xmlns="urn:oasis:names:tc:opendocument:xmlns:container"><rootfiles>
  <rootfile full-path="a.opf" media-type="text/xml"/>
  <rootfile full-path="b.opf" media-type="text/xml"/>
</rootfiles></container>`,
			want: "a.opf",
		},
		{
			name:    "no rootfile",
			xml:     `<container><rootfiles><rootfile full-path=" "/></rootfiles></container>`,
			wantErr: ErrNoRootfile,
		},
		{
			name:    "not xml",
			xml:     "nope",
			wantErr: ErrInvalidContainer,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseContainer([]byte(tt.xml))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContainerDocument(t *testing.T) {
	data, err := containerDocument()
	require.NoError(t, err)
	got, err := parseContainer(data)
	require.NoError(t, err)
	assert.Equal(t, DefaultPackagePath, got)
}
