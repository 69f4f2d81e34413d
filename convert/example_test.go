package convert_test

import (
	"fmt"

	"sheet-importer/convert"
)

func Example() {
	conv := convert.List(",", convert.Int())

	v, ok, err := conv.Input("1,2,3")
	fmt.Println(v, ok, err)

	_, ok, err = conv.Input("")
	fmt.Println(ok, err)

	fmt.Println(conv.Output([]any{4, 5}))
	fmt.Println(conv)
	// Output:
	// [1 2 3] true <nil>
	// false empty value
	// 4,5
	// List(",", Int)
}

func ExampleConverter_Input_bool() {
	for _, raw := range []any{"FALSE", "yes", "0", 0} {
		v, _, _ := convert.Bool().Input(raw)
		fmt.Printf("%v -> %v\n", raw, v)
	}
	// Output:
	// FALSE -> false
	// yes -> true
	// 0 -> false
	// 0 -> false
}
