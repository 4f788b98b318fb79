package arith_test

import (
	"math"
	"math/big"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/okian/bfhl/internal/domain/arith"
	. "github.com/smartystreets/goconvey/convey"
)

func bigStrings(values []*big.Int) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return out
}

func TestFibonacci(t *testing.T) {
	Convey("Given the Fibonacci generator", t, func() {
		Convey("When asking for a single term", func() {
			terms, err := arith.Fibonacci(1)

			Convey("Then it should return [0]", func() {
				So(err, ShouldBeNil)
				So(bigStrings(terms), ShouldResemble, []string{"0"})
			})
		})

		Convey("When asking for five terms", func() {
			terms, err := arith.Fibonacci(5)

			Convey("Then it should return the classic prefix", func() {
				So(err, ShouldBeNil)
				So(bigStrings(terms), ShouldResemble, []string{"0", "1", "1", "2", "3"})
			})
		})

		Convey("When asking for terms past the int64 range", func() {
			terms, err := arith.Fibonacci(100)

			Convey("Then the last term should be exact", func() {
				So(err, ShouldBeNil)
				So(terms, ShouldHaveLength, 100)
				So(terms[99].String(), ShouldEqual, "218922995834555169026")
			})
		})

		Convey("When n is zero or negative", func() {
			_, errZero := arith.Fibonacci(0)
			_, errNeg := arith.Fibonacci(-3)

			Convey("Then it should report an out of range error", func() {
				So(errors.Is(errZero, arith.ErrTermsOutOfRange), ShouldBeTrue)
				So(errors.Is(errNeg, arith.ErrTermsOutOfRange), ShouldBeTrue)
			})
		})
	})
}

func TestIsPrime(t *testing.T) {
	Convey("Given the primality check", t, func() {
		Convey("Then values below 2 are not prime", func() {
			for _, v := range []int64{math.MinInt64, -7, -1, 0, 1} {
				So(arith.IsPrime(v), ShouldBeFalse)
			}
		})

		Convey("Then small primes are detected", func() {
			for _, v := range []int64{2, 3, 5, 7, 11, 13, 17, 97, 7919} {
				So(arith.IsPrime(v), ShouldBeTrue)
			}
		})

		Convey("Then small composites are rejected", func() {
			for _, v := range []int64{4, 6, 9, 15, 25, 49, 7917} {
				So(arith.IsPrime(v), ShouldBeFalse)
			}
		})

		Convey("Then large values beyond trial division are classified", func() {
			So(arith.IsPrime(9223372036854775783), ShouldBeTrue)  // largest int64 prime
			So(arith.IsPrime(9223372036854775807), ShouldBeFalse) // 7^2 * 73 * ...
			So(arith.IsPrime(4294967311), ShouldBeTrue)
		})
	})
}

func TestFilterPrimes(t *testing.T) {
	Convey("Given a list of integers", t, func() {
		Convey("When filtering [1,2,3,4,5,17]", func() {
			got := arith.FilterPrimes([]int64{1, 2, 3, 4, 5, 17})

			Convey("Then it should keep the primes in order", func() {
				So(got, ShouldResemble, []int64{2, 3, 5, 17})
			})
		})

		Convey("When filtering an empty list", func() {
			got := arith.FilterPrimes(nil)

			Convey("Then it should return an empty non-nil slice", func() {
				So(got, ShouldNotBeNil)
				So(got, ShouldBeEmpty)
			})
		})

		Convey("When the list contains duplicates and negatives", func() {
			got := arith.FilterPrimes([]int64{-2, 7, 7, 0, 8})

			Convey("Then duplicates are preserved and negatives dropped", func() {
				So(got, ShouldResemble, []int64{7, 7})
			})
		})
	})
}

func TestLCMAll(t *testing.T) {
	Convey("Given the LCM fold", t, func() {
		Convey("When folding [4,6]", func() {
			got, err := arith.LCMAll([]int64{4, 6})
			So(err, ShouldBeNil)
			So(got.String(), ShouldEqual, "12")
		})

		Convey("When folding [4,6,5]", func() {
			got, err := arith.LCMAll([]int64{4, 6, 5})
			So(err, ShouldBeNil)
			So(got.String(), ShouldEqual, "60")
		})

		Convey("When folding negative values", func() {
			got, err := arith.LCMAll([]int64{-4, 6})
			So(err, ShouldBeNil)
			So(got.String(), ShouldEqual, "12")
		})

		Convey("When a zero operand is present", func() {
			got, err := arith.LCMAll([]int64{0, 0, 5})
			So(err, ShouldBeNil)
			So(got.String(), ShouldEqual, "0")
		})

		Convey("When the product exceeds int64", func() {
			got, err := arith.LCMAll([]int64{9223372036854775783, 4294967311})
			So(err, ShouldBeNil)
			want := new(big.Int).Mul(big.NewInt(9223372036854775783), big.NewInt(4294967311))
			So(got.Cmp(want), ShouldEqual, 0)
		})

		Convey("When a single value is given", func() {
			got, err := arith.LCMAll([]int64{9})
			So(err, ShouldBeNil)
			So(got.String(), ShouldEqual, "9")
		})

		Convey("When the list is empty", func() {
			_, err := arith.LCMAll(nil)
			So(errors.Is(err, arith.ErrEmptyInput), ShouldBeTrue)
		})
	})
}

func TestHCF(t *testing.T) {
	Convey("Given the HCF fold", t, func() {
		Convey("When folding [12,18]", func() {
			got, err := arith.HCF([]int64{12, 18})
			So(err, ShouldBeNil)
			So(got.String(), ShouldEqual, "6")
		})

		Convey("When folding coprime values [7,13]", func() {
			got, err := arith.HCF([]int64{7, 13})
			So(err, ShouldBeNil)
			So(got.String(), ShouldEqual, "1")
		})

		Convey("When folding negative values", func() {
			got, err := arith.HCF([]int64{-24, 36, -60})
			So(err, ShouldBeNil)
			So(got.String(), ShouldEqual, "12")
		})

		Convey("When folding zeros", func() {
			got, err := arith.HCF([]int64{0, 0})
			So(err, ShouldBeNil)
			So(got.String(), ShouldEqual, "0")
		})

		Convey("When the minimum int64 is involved", func() {
			got, err := arith.HCF([]int64{math.MinInt64, math.MinInt64})
			So(err, ShouldBeNil)
			So(got.String(), ShouldEqual, "9223372036854775808")
		})

		Convey("When the list is empty", func() {
			_, err := arith.HCF([]int64{})
			So(errors.Is(err, arith.ErrEmptyInput), ShouldBeTrue)
		})
	})
}

func TestGCDAndLCM(t *testing.T) {
	Convey("Given pairwise helpers", t, func() {
		So(arith.GCD(big.NewInt(0), big.NewInt(0)).Sign(), ShouldEqual, 0)
		So(arith.GCD(big.NewInt(-8), big.NewInt(12)).String(), ShouldEqual, "4")
		So(arith.LCM(big.NewInt(0), big.NewInt(0)).Sign(), ShouldEqual, 0)
		So(arith.LCM(big.NewInt(3), big.NewInt(-7)).String(), ShouldEqual, "21")
	})
}
