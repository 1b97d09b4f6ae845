package store

import (
	"math"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
)

func TestMarshalNumericLeaves(t *testing.T) {
	expect := assert.New(t)

	// Integers become exact decimals
	a, err := MarshalValue(800)
	expect.NoError(err)
	expect.Equal(&types.AttributeValueMemberN{Value: "800"}, a, "int is an exact decimal")

	a, err = MarshalValue(int64(7097285))
	expect.NoError(err)
	expect.Equal(&types.AttributeValueMemberN{Value: "7097285"}, a, "int64 is an exact decimal")

	// Finite floats convert via their shortest round-trip decimal string,
	// not via binary expansion: 0.1 stays "0.1", not "0.1000000000000000055..."
	a, err = MarshalValue(0.1)
	expect.NoError(err)
	expect.Equal(&types.AttributeValueMemberN{Value: "0.1"}, a, "float uses canonical decimal string")

	a, err = MarshalValue(1.3333333333333333)
	expect.NoError(err)
	expect.Equal(&types.AttributeValueMemberN{Value: "1.3333333333333333"}, a)

	// float32 values keep float32 precision
	a, err = MarshalValue(float32(99.5))
	expect.NoError(err)
	expect.Equal(&types.AttributeValueMemberN{Value: "99.5"}, a, "float32 stays short")
}

func TestMarshalNonFiniteSentinels(t *testing.T) {
	expect := assert.New(t)

	a, err := MarshalValue(math.NaN())
	expect.NoError(err)
	expect.Equal(&types.AttributeValueMemberS{Value: "NaN"}, a, "NaN becomes the reserved string")

	a, err = MarshalValue(math.Inf(1))
	expect.NoError(err)
	expect.Equal(&types.AttributeValueMemberS{Value: "Infinity"}, a, "+Inf becomes the reserved string")

	a, err = MarshalValue(math.Inf(-1))
	expect.NoError(err)
	expect.Equal(&types.AttributeValueMemberS{Value: "-Infinity"}, a, "-Inf becomes the reserved string")
}

func TestMarshalItemRecursion(t *testing.T) {
	expect := assert.New(t)

	item := Item{
		"image_type": ".jpg",
		"extracted_metadata": map[string]any{
			"width_pixels": 800,
			"aspect_ratio": 1.3333333333333333,
			"rekognition_labels": []any{
				map[string]any{"Name": "Nature", "Confidence": 95.0},
				map[string]any{"Name": "Glitch", "Confidence": math.NaN()},
			},
		},
		"thumbnails": map[string]string{
			"128x128": "s3://thumbs/thumbnails/cat_128x128.jpeg",
		},
		"missing": nil,
	}
	av, err := MarshalItem(item)
	expect.NoError(err, "marshaling nested item")

	meta := av["extracted_metadata"].(*types.AttributeValueMemberM).Value
	expect.Equal(&types.AttributeValueMemberN{Value: "800"}, meta["width_pixels"])
	expect.Equal(&types.AttributeValueMemberN{Value: "1.3333333333333333"}, meta["aspect_ratio"])

	labels := meta["rekognition_labels"].(*types.AttributeValueMemberL).Value
	first := labels[0].(*types.AttributeValueMemberM).Value
	expect.Equal(&types.AttributeValueMemberN{Value: "95"}, first["Confidence"], "whole float is still a number")
	second := labels[1].(*types.AttributeValueMemberM).Value
	expect.Equal(&types.AttributeValueMemberS{Value: "NaN"}, second["Confidence"], "non-finite leaf is the sentinel, deep in the tree")

	expect.Equal(&types.AttributeValueMemberNULL{Value: true}, av["missing"], "nil maps to NULL")
}

func TestUnmarshalRoundTrip(t *testing.T) {
	expect := assert.New(t)

	item := Item{
		"filesize_bytes": int64(12345),
		"aspect_ratio":   1.7777777777777777,
		"confidence":     math.Inf(1),
		"format":         "JPEG",
		"ok":             true,
		"labels":         []any{"Nature", "Landscape"},
	}
	av, err := MarshalItem(item)
	expect.NoError(err)
	back, err := UnmarshalItem(av)
	expect.NoError(err)

	expect.Equal(int64(12345), back["filesize_bytes"], "integral number reads back as int64")
	expect.Equal(1.7777777777777777, back["aspect_ratio"], "float reads back with no precision loss")
	expect.Equal("Infinity", back["confidence"], "sentinel stays a string on the way back")
	expect.Equal("JPEG", back["format"])
	expect.Equal(true, back["ok"])
	expect.Equal([]any{"Nature", "Landscape"}, back["labels"])
}
