package catcare_test

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aretw0/catcare"
	"github.com/aretw0/catcare/pkg/core"
)

// Example_merge shows a backup being merged into existing state.
func Example_merge() {
	ctx := context.Background()

	svc, err := catcare.New("", catcare.WithAdapter("memory"))
	if err != nil {
		log.Fatal(err)
	}
	if err := svc.Store().Set(ctx, core.KeyPets, `[{"id":1,"name":"Milo"}]`); err != nil {
		log.Fatal(err)
	}

	backup := `{"pets":[{"id":1,"name":"Milo","breed":"Tabby"},{"id":2,"name":"Luna"}]}`
	imp, err := svc.Validate(ctx, "backup.json", strings.NewReader(backup), false)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("preview: %d pets\n", imp.Preview.Pets)

	if _, err := svc.Apply(ctx, imp, catcare.ModeMerge); err != nil {
		log.Fatal(err)
	}

	pets, err := catcare.Pets(svc.Store()).List(ctx)
	if err != nil {
		log.Fatal(err)
	}
	for _, p := range pets {
		fmt.Printf("%s %s %q\n", p.ID, p.Name, p.Breed)
	}
	// Output:
	// preview: 2 pets
	// 1 Milo "Tabby"
	// 2 Luna ""
}

// ExampleService_Export shows the file name and timestamp of a backup.
func ExampleService_Export() {
	ctx := context.Background()
	at := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

	svc, err := catcare.New("",
		catcare.WithAdapter("memory"),
		catcare.WithClock(func() time.Time { return at }),
	)
	if err != nil {
		log.Fatal(err)
	}

	export, err := svc.Export(ctx)
	if err != nil {
		log.Fatal(err)
	}
	defer export.Handle.Release()

	fmt.Println(export.Filename)
	fmt.Println(export.Snapshot["exportedAt"])
	// Output:
	// catcare_backup_2024-03-09.json
	// 2024-03-09T12:00:00.000Z
}
