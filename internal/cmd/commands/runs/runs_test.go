package runs

import (
	"fmt"
	"testing"
	"time"

	"github.com/araddon/dateparse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagSliceFlag(t *testing.T) {
	var flags tagSliceFlag
	require.NoError(t, flags.Set("model=resnet"))
	require.NoError(t, flags.Set("dataset=imagenet"))

	tags, err := flags.runTags()
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "model", tags[0].Key)
	assert.Equal(t, "resnet", tags[0].Value)
}

func TestTagSliceFlag_Invalid(t *testing.T) {
	flags := tagSliceFlag{"no-equals-sign"}

	_, err := flags.runTags()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected key=value")
}

func TestListCommand_BuildFilter(t *testing.T) {
	after, err := dateparse.ParseAny("2024-04-25")
	require.NoError(t, err)

	c := &ListCommand{
		flagFilter:       "metrics.accuracy > 0.9",
		flagStartedAfter: "2024-04-25",
	}

	filter, err := c.buildFilter()
	require.NoError(t, err)
	assert.Equal(t,
		fmt.Sprintf("metrics.accuracy > 0.9 and attributes.start_time > %d", after.UnixMilli()),
		filter)
}

func TestListCommand_BuildFilter_TimeOnly(t *testing.T) {
	before := time.Date(2024, 4, 25, 17, 0, 0, 0, time.UTC)

	c := &ListCommand{flagStartedBefore: before.Format(time.RFC3339)}

	filter, err := c.buildFilter()
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("attributes.start_time < %d", before.UnixMilli()), filter)
}

func TestListCommand_BuildFilter_BadTime(t *testing.T) {
	c := &ListCommand{flagStartedAfter: "not a time"}

	_, err := c.buildFilter()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid -started-after")
}
