package govtalk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConvertXML(t *testing.T) {
	converter := NewConverter()

	result := converter.Convert("<GovTalkMessage><Header><MessageDetails><Class>HMRC-PAYE-RTI-EPS</Class></MessageDetails></Header></GovTalkMessage>")
	assert.True(t, result.OK)
	assert.Empty(t, result.Err)
	assert.Contains(t, result.JSON, "GovTalkMessage")
}

func TestConvertPlainText(t *testing.T) {
	converter := NewConverter()

	result := converter.Convert("not an xml body")
	assert.False(t, result.OK)
	assert.NotEmpty(t, result.Err)
	assert.Nil(t, result.JSON)
}

func TestConvertEmpty(t *testing.T) {
	converter := NewConverter()

	result := converter.Convert("   ")
	assert.False(t, result.OK)
	assert.Equal(t, "empty body", result.Err)
}
