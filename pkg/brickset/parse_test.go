package brickset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingFixture = `
<html><body>
<article class='set'>
  <div class='meta'>
    <h1><a href='/minifigs/sw0282'><span>SW0282: </span> Clone Trooper (Phase 2)</a></h1>
  </div>
  <dl>
    <dt>Value new</dt> <dd><a href='#'>~$14.50</a></dd>
    <dt>Value used</dt> <dd><a href='#'>~$9.20</a></dd>
  </dl>
</article>
<article class='set'>
  <h1><a href='/minifigs/sw0001a'>Luke Skywalker (Tatooine)</a></h1>
  <p>sw0001a appears in 3 sets</p>
  <dl>
    <dt>Value new</dt> <dd><a href='#'>~$1,234.56</a></dd>
  </dl>
</article>
<article class='set'>
  <h1><a href='/sets/75001'>A set without any minifig id</a></h1>
</article>
</body></html>`

func TestParseListing(t *testing.T) {
	records := ParseListing(listingFixture)
	require.Len(t, records, 2)

	clone := records[0]
	assert.Equal(t, "sw0282", clone.BricklinkID)
	assert.Equal(t, "Clone Trooper (Phase 2)", clone.Name)
	require.NotNil(t, clone.ValueNew)
	assert.Equal(t, 14.5, *clone.ValueNew)
	require.NotNil(t, clone.ValueUsed)
	assert.Equal(t, 9.2, *clone.ValueUsed)

	luke := records[1]
	assert.Equal(t, "sw0001a", luke.BricklinkID)
	assert.Equal(t, "Luke Skywalker (Tatooine)", luke.Name)
	require.NotNil(t, luke.ValueNew, "comma-formatted price parses")
	assert.Equal(t, 1234.56, *luke.ValueNew)
	assert.Nil(t, luke.ValueUsed, "absent price stays nil")
}

func TestParseListingEmptyPage(t *testing.T) {
	assert.Empty(t, ParseListing("<html><body>No articles here</body></html>"))
}

func TestParseListingIDCaseFolded(t *testing.T) {
	records := ParseListing(`<article><h1><a href='/m'><span></span></a></h1><p>SW0123B</p></article>`)
	require.Len(t, records, 1)
	assert.Equal(t, "sw0123b", records[0].BricklinkID)
}
