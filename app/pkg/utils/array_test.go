package utils

import (
	"reflect"
	"testing"
)

func TestRemoveDuplicates(t *testing.T) {
	arr := []string{"audio/wav", "audio/mpeg", "audio/flac", "audio/wav"}
	expected := []string{"audio/wav", "audio/mpeg", "audio/flac"}
	result := RemoveDuplicates(arr)

	if !reflect.DeepEqual(result, expected) {
		t.Errorf("Expected %v, but got %v", expected, result)
	}
}

func TestContains(t *testing.T) {
	slice := []string{"audio/mpeg", "audio/wav", "audio/ogg"}
	if !Contains("audio/wav", slice) {
		t.Errorf("Expected to find audio/wav in slice, but didn't")
	}

	if Contains("video/mp4", slice) {
		t.Errorf("Did not expect to find video/mp4 in slice, but did")
	}
}
