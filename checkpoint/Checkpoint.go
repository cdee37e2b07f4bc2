// Package checkpoint saves and loads serializable objects to and from
// disk
package checkpoint

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
)

// Serializable is an object that can be saved/serialized
type Serializable interface {
	gob.GobEncoder
	gob.GobDecoder
}

// Filename returns the path of the checkpoint file for a model
// running on an environment. Checkpoints are stored in dir and named
// by the environment and model so that later runs on the same
// combination overwrite earlier ones.
func Filename(dir, envName, modelName string) string {
	return filepath.Join(dir, fmt.Sprintf("%v-%v.bin", envName, modelName))
}

// Save serializes object to the file at filename, creating the file
// if needed and overwriting any existing checkpoint
func Save(filename string, object Serializable) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("save: could not create checkpoint file: %v",
			err)
	}
	defer file.Close()

	en := gob.NewEncoder(file)
	if err := en.Encode(object); err != nil {
		return fmt.Errorf("save: could not encode object: %v", err)
	}
	return nil
}

// Load deserializes the file at filename into object. The object must
// be of the same concrete type as the object the checkpoint was saved
// from.
func Load(filename string, object Serializable) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("load: could not open checkpoint file: %v", err)
	}
	defer file.Close()

	dec := gob.NewDecoder(file)
	if err := dec.Decode(object); err != nil {
		return fmt.Errorf("load: could not decode object: %v", err)
	}
	return nil
}
