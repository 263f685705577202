package tfrecord_test

import (
	"bytes"
	"errors"
	"fmt"
	"log"

	"github.com/ssargent/tfrecord/internal/tfrecordtest"
	"github.com/ssargent/tfrecord/pkg/tfrecord"
)

// ExampleReader_Records demonstrates iterating a container
func ExampleReader_Records() {
	data := tfrecordtest.Strings(nil, "alpha", "beta", "gamma")

	r := tfrecord.NewReader(bytes.NewReader(data), tfrecord.ReaderConfig{ValidateIntegrity: true})
	defer r.Close()

	for record, err := range r.Records() {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%s\n", record)
	}

	// Output:
	// alpha
	// beta
	// gamma
}

// ExampleReader_Count demonstrates counting records
func ExampleReader_Count() {
	data := tfrecordtest.Strings(nil, "a", "", "c")

	r := tfrecord.NewReader(bytes.NewReader(data), tfrecord.ReaderConfig{})
	n, err := r.Count()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(n)

	// Output:
	// 3
}

// ExampleReader_Read_truncated demonstrates how a cut-off container is reported
func ExampleReader_Read_truncated() {
	data := tfrecordtest.Strings(nil, "hello")
	data = data[:len(data)-1]

	r := tfrecord.NewReader(bytes.NewReader(data), tfrecord.ReaderConfig{})
	_, _, err := r.Read()

	var corrupt *tfrecord.CorruptError
	if errors.As(err, &corrupt) {
		fmt.Println(corrupt.Field)
	}
	fmt.Println(errors.Is(err, tfrecord.ErrCorruptContainer))

	// Output:
	// payload token
	// true
}
