// Copyright 2025 mfrec Project Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dataset

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/juju/errors"
	"github.com/mfrec-io/mfrec/base"
)

// Rating is a single user-item interaction. The timestamp column of the
// source file is discarded at parse time.
type Rating struct {
	User  int
	Item  int
	Score float32
}

// Dataset is an ordered collection of ratings.
type Dataset struct {
	ratings []Rating
	maxUser int
	maxItem int
	sum     float64
}

func NewDataset(ratings []Rating) *Dataset {
	d := &Dataset{
		ratings: ratings,
		maxUser: -1,
		maxItem: -1,
	}
	for _, r := range ratings {
		d.maxUser = max(d.maxUser, r.User)
		d.maxItem = max(d.maxItem, r.Item)
		d.sum += float64(r.Score)
	}
	return d
}

// LoadRatings parses a tab-separated ratings file. Each well-formed line has
// 4 fields: user id, item id, rating and timestamp. Lines with any other
// field count are skipped. A malformed numeric field fails the whole parse.
func LoadRatings(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	defer f.Close()
	var ratings []Rating
	lineno := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineno++
		fields := strings.Split(scanner.Text(), "\t")
		if len(fields) != 4 {
			continue
		}
		user, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, errors.Annotatef(err, "parse user id at %s:%d", path, lineno)
		}
		item, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, errors.Annotatef(err, "parse item id at %s:%d", path, lineno)
		}
		score, err := strconv.ParseFloat(fields[2], 32)
		if err != nil {
			return nil, errors.Annotatef(err, "parse rating at %s:%d", path, lineno)
		}
		ratings = append(ratings, Rating{User: user, Item: item, Score: float32(score)})
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Trace(err)
	}
	return NewDataset(ratings), nil
}

// Count returns the number of ratings.
func (d *Dataset) Count() int {
	return len(d.ratings)
}

// CountUsers returns the size of the user id space (max id + 1).
func (d *Dataset) CountUsers() int {
	return d.maxUser + 1
}

// CountItems returns the size of the item id space (max id + 1).
func (d *Dataset) CountItems() int {
	return d.maxItem + 1
}

func (d *Dataset) Get(i int) (int, int, float32) {
	r := d.ratings[i]
	return r.User, r.Item, r.Score
}

// GlobalMean returns the mean rating over the whole dataset.
func (d *Dataset) GlobalMean() float32 {
	if len(d.ratings) == 0 {
		return 0
	}
	return float32(d.sum / float64(len(d.ratings)))
}

// DistinctUsers returns the set of user ids with at least one rating.
func (d *Dataset) DistinctUsers() mapset.Set[int] {
	users := mapset.NewSet[int]()
	for _, r := range d.ratings {
		users.Add(r.User)
	}
	return users
}

// DistinctItems returns the set of item ids with at least one rating.
func (d *Dataset) DistinctItems() mapset.Set[int] {
	items := mapset.NewSet[int]()
	for _, r := range d.ratings {
		items.Add(r.Item)
	}
	return items
}

// Split shuffles the dataset and splits it into a train set and a test set.
// The test set holds testRatio of the ratings.
func (d *Dataset) Split(testRatio float32, seed int64) (*Dataset, *Dataset) {
	rng := base.NewRandomGenerator(seed)
	perm := rng.Perm(len(d.ratings))
	testSize := int(float32(len(d.ratings)) * testRatio)
	test := make([]Rating, 0, testSize)
	train := make([]Rating, 0, len(d.ratings)-testSize)
	for i, p := range perm {
		if i < testSize {
			test = append(test, d.ratings[p])
		} else {
			train = append(train, d.ratings[p])
		}
	}
	return NewDataset(train), NewDataset(test)
}
